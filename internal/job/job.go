// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package job provides the cancelable repeating timer that drives the prayer schedule tick.
package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrAlreadyRunning is returned if Start is called on a Job that already has a live timer.
var ErrAlreadyRunning = errors.New("job is already running")

// Job runs a task at a fixed interval. A Job owns at most one live timer and its runs never
// overlap (singleton mode).
type Job struct {
	interval time.Duration
	task     func(context.Context)
	running  atomic.Bool
}

// New creates a new Job with the given interval and task.
func New(interval time.Duration, task func(context.Context)) *Job {
	return &Job{
		interval: interval,
		task:     task,
	}
}

// Running reports whether the job currently owns a live timer.
func (j *Job) Running() bool {
	return j.running.Load()
}

// Start executes the task on every tick until ctx is cancelled and then returns nil. If a tick
// fires while a previous run is still executing, that tick is skipped. Starting a Job that is
// already running returns ErrAlreadyRunning.
func (j *Job) Start(ctx context.Context) error {
	if j.task == nil || j.interval <= 0 {
		return nil
	}
	if !j.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer j.running.Store(false)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// 1-slot semaphore: "is a run in progress?"
	sem := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				go func() {
					defer func() { <-sem }()
					runCtx, cancel := context.WithCancel(ctx)
					defer cancel()
					j.task(runCtx)
				}()
			default:
			}
		}
	}
}
