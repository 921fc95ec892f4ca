// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package alarm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandBackend plays sounds through an external audio player like mpv.
type CommandBackend struct {
	Player   string
	Args     []string
	LoopArgs []string
}

// NewCommandBackend returns a CommandBackend. args and loopArgs are split on whitespace.
func NewCommandBackend(player, args, loopArgs string) *CommandBackend {
	return &CommandBackend{
		Player:   player,
		Args:     strings.Fields(args),
		LoopArgs: strings.Fields(loopArgs),
	}
}

// Play starts the player process. The process is not bound to ctx; it runs until it ends or
// the returned Handle is stopped.
func (c *CommandBackend) Play(_ context.Context, source string, loop bool) (Handle, error) {
	if _, err := exec.LookPath(c.Player); err != nil {
		return nil, fmt.Errorf("audio player %q not available: %w", c.Player, err)
	}
	args := append([]string{}, c.Args...)
	if loop {
		args = append(args, c.LoopArgs...)
	}
	args = append(args, source)

	cmd := exec.Command(c.Player, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start audio player: %w", err)
	}
	handle := &processHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(handle.done)
	}()
	return handle, nil
}

type processHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

func (h *processHandle) Stop() error {
	h.once.Do(func() {
		select {
		case <-h.done:
			return
		default:
		}
		if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			h.err = fmt.Errorf("failed to stop audio player: %w", err)
		}
	})
	return h.err
}

func (h *processHandle) Done() <-chan struct{} {
	return h.done
}
