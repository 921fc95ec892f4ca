// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"

	"github.com/wneessen/waybar-prayertimes/internal/config"
)

// Open returns the store backend selected in the config.
func Open(ctx context.Context, conf *config.Config) (Store, error) {
	switch conf.Store.Backend {
	case "file":
		return NewFileStore(conf.Store.File)
	case "redis":
		return NewRedisStore(ctx, RedisOptions{
			Address:  conf.Store.Redis.Address,
			Username: conf.Store.Redis.Username,
			Password: conf.Store.Redis.Password,
			DB:       conf.Store.Redis.DB,
			Prefix:   conf.Store.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", conf.Store.Backend)
	}
}
