// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"time"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for JSON API requests
	DefaultTimeout = time.Second * 10
	// DownloadTimeout is the timeout for file downloads like alarm sounds
	DownloadTimeout = time.Minute * 2
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with API requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) waybar-prayertimes/%s (+https://github.com/wneessen/waybar-prayertimes/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	ErrNonPointerTarget = errors.New("target must be a non-nil pointer")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Client is a type wrapper for the Go stdlib http.Client
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig}
	httpClient := &http.Client{
		Timeout:   DownloadTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// Get performs a HTTP GET request for the given URL and json-unmarshals the response
// into target
func (h *Client) Get(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string) (int, error) {
	return h.GetWithTimeout(ctx, endpoint, target, query, headers, DefaultTimeout)
}

// GetWithTimeout performs a HTTP GET request for the given URL and timeout and JSON-unmarshals
// the response into target
func (h *Client) GetWithTimeout(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string, timeout time.Duration) (int, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}
	return h.doJSON(ctx, http.MethodGet, reqURL.String(), nil, target, headers, timeout)
}

// Post performs a HTTP POST request for the given URL and json-unmarshals the response
// into target
func (h *Client) Post(ctx context.Context, endpoint string, target any, body io.Reader, headers map[string]string) (int, error) {
	return h.PostWithTimeout(ctx, endpoint, target, body, headers, DefaultTimeout)
}

// PostWithTimeout performs a HTTP POST request for the given URL and timeout and JSON-unmarshals
// the response into target
func (h *Client) PostWithTimeout(ctx context.Context, endpoint string, target any, body io.Reader, headers map[string]string, timeout time.Duration) (int, error) {
	return h.doJSON(ctx, http.MethodPost, endpoint, body, target, headers, timeout)
}

// Download performs a HTTP GET request for the given URL and copies the response body to w.
// Non-2xx responses are treated as errors.
func (h *Client) Download(ctx context.Context, endpoint string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	response, err := h.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return 0, err
	}
	defer h.closeBody(response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
	}
	written, err := io.Copy(w, response.Body)
	if err != nil {
		return written, fmt.Errorf("failed to read response body: %w", err)
	}
	return written, nil
}

func (h *Client) doJSON(ctx context.Context, method, endpoint string, body io.Reader, target any, headers map[string]string, timeout time.Duration) (int, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, ErrNonPointerTarget
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := h.do(ctx, method, endpoint, body, headers)
	if err != nil {
		return 0, err
	}
	defer h.closeBody(response.Body)

	// Unmarshal the JSON API response into target
	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return response.StatusCode, fmt.Errorf("failed to decode JSON: %w", err)
	}

	return response.StatusCode, nil
}

func (h *Client) do(ctx context.Context, method, endpoint string, body io.Reader, headers map[string]string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	response, err := h.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return nil, errors.New("nil response received")
	}
	return response, nil
}

func (h *Client) closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		h.logger.Error("failed to close HTTP response body", logger.Err(err))
	}
}
