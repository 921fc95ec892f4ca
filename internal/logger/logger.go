// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package logger wraps log/slog with the text handler used by all components.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing to stderr. Stdout is reserved for the waybar output.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a Logger writing text records of at least the given level to w.
func NewLogger(level slog.Level, w io.Writer) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog.New(handler)}
}

// Err returns an slog attribute for err under the "error" key.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

// Prayer returns an slog attribute naming a prayer under the "prayer" key.
func Prayer[K ~string](key K) slog.Attr {
	return slog.String("prayer", string(key))
}
