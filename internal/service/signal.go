// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wneessen/waybar-prayertimes/internal/logger"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals toggles the alternative output on SIGUSR1 and dismisses the active alarm on
// SIGUSR2.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.displayAltLock.Lock()
				s.displayAltText = !s.displayAltText
				s.displayAltLock.Unlock()
			case syscall.SIGUSR2:
				event, _ := s.player.Active()
				if !s.player.Dismiss() {
					s.logger.Info("no active alarm to dismiss")
					continue
				}
				s.logger.Info("alarm dismissed", logger.Prayer(event.Key))
			}
			s.printCurrent()
		}
	}
}
