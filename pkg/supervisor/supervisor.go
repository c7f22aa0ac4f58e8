// Package supervisor runs long-lived background tasks and decides what to
// do when they stop. A task that returns while its context is still live is
// either restarted after a delay or left stopped, per configuration; it is
// never allowed to die unobserved.
package supervisor

import (
	"context"
	"log/slog"
	"time"
)

// Task is a blocking unit of work that runs until its context is cancelled
// or it fails.
type Task func(ctx context.Context) error

type Supervisor struct {
	log          *slog.Logger
	restart      bool
	restartDelay time.Duration
}

func New(log *slog.Logger, restart bool, restartDelay time.Duration) *Supervisor {
	if restartDelay <= 0 {
		restartDelay = 5 * time.Second
	}
	return &Supervisor{log: log, restart: restart, restartDelay: restartDelay}
}

// Run executes the task until the context is cancelled. When the task exits
// early the exit is logged; with restart enabled Run waits the configured
// delay and runs it again, otherwise the last error is returned.
func (s *Supervisor) Run(ctx context.Context, name string, task Task) error {
	for {
		err := task(ctx)
		if ctx.Err() != nil {
			s.log.Info("supervised task stopped", "task", name)
			return nil
		}

		if !s.restart {
			s.log.Error("supervised task exited, restart disabled", "task", name, "err", err)
			return err
		}
		s.log.Error("supervised task exited, restarting", "task", name, "err", err, "delay", s.restartDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.restartDelay):
		}
	}
}
