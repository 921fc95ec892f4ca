// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper contains shared test doubles.
package testhelper

import (
	"io"
	"net/http"
	"os"
	"strings"
)

// MockRoundTripper is an http.RoundTripper that delegates to Fn.
type MockRoundTripper struct {
	Fn func(*http.Request) (*http.Response, error)
}

// RoundTrip implements http.RoundTripper.
func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// FileResponse returns a round trip function that answers every request with the contents of
// file and the given status code.
func FileResponse(file string, status int) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		return &http.Response{StatusCode: status, Body: data, Header: make(http.Header)}, nil
	}
}

// StringResponse returns a round trip function that answers every request with body.
func StringResponse(body string, status int) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	}
}
