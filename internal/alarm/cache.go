// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package alarm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
	"github.com/wneessen/waybar-prayertimes/internal/schedule"
)

// Downloader fetches a remote file.
type Downloader interface {
	Download(ctx context.Context, endpoint string, w io.Writer) (int64, error)
}

// SoundCatalog resolves sounds to their configured sources. Remote sources are downloaded into a
// cache directory on first use, so alarms keep working offline.
type SoundCatalog struct {
	mu      sync.Mutex
	sources map[schedule.Sound]string
	dir     string
	client  Downloader
	logger  *logger.Logger
}

// NewSoundCatalog returns a catalog for the given sources. With an empty dir or a nil client,
// remote sources are handed to the player as they are.
func NewSoundCatalog(log *logger.Logger, sources map[schedule.Sound]string, dir string, client Downloader) *SoundCatalog {
	return &SoundCatalog{
		sources: sources,
		dir:     dir,
		client:  client,
		logger:  log,
	}
}

// Resolve returns a playable source for sound. Unknown sounds resolve to the primary sound.
func (c *SoundCatalog) Resolve(ctx context.Context, sound schedule.Sound) string {
	source, ok := c.sources[sound]
	if !ok {
		sound = schedule.PrimarySound
		source = c.sources[sound]
	}
	if !isRemote(source) || c.dir == "" || c.client == nil {
		return source
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	file := filepath.Join(c.dir, cacheName(sound, source))
	if _, err := os.Stat(file); err == nil {
		return file
	}
	if err := c.fetch(ctx, source, file); err != nil {
		c.logger.Warn("failed to cache alarm sound, using remote source", slog.String("sound", string(sound)),
			logger.Err(err))
		return source
	}
	return file
}

func (c *SoundCatalog) fetch(ctx context.Context, source, file string) error {
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create sound cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary sound file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = c.client.Download(ctx, source, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary sound file: %w", err)
	}
	return os.Rename(tmp.Name(), file)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// cacheName keeps the file extension of the source so players can detect the format.
func cacheName(sound schedule.Sound, source string) string {
	ext := ".mp3"
	if u, err := url.Parse(source); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return string(sound) + ext
}
