// Package scheduler runs the overrun sweep on a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"github.com/alexanderramin/punchclock/internal/service"
)

// Sweeper is the work run on every tick.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// Scheduler runs a Sweeper periodically. Runs never overlap: a tick that
// arrives while a sweep is in progress is skipped, and with a lock file a
// tick is also skipped while another process holds the lock.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	lock     *flock.Flock
	log      *slog.Logger

	running atomic.Bool
}

type Option func(*Scheduler)

// WithLockFile shares the non-overlap guarantee with other processes
// that use the same path.
func WithLockFile(path string) Option {
	return func(s *Scheduler) {
		if path != "" {
			s.lock = flock.New(path)
		}
	}
}

// New creates a Scheduler. A non-positive interval is rejected by Run.
func New(sweeper Sweeper, interval time.Duration, log *slog.Logger, opts ...Option) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Scheduler{sweeper: sweeper, interval: interval, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately and then on every tick until ctx is
// canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("scheduler starting", "interval", s.interval.String())
	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one sweep unless one is already running here or in a
// process holding the lock file. It reports whether a sweep ran.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("sweep still running, skipping tick")
		return false
	}
	defer s.running.Store(false)

	if s.lock != nil {
		ok, err := s.lock.TryLock()
		if err != nil {
			s.log.Error("sweep lock failed", "path", s.lock.Path(), "error", err)
			return false
		}
		if !ok {
			s.log.Info("sweep lock held by another process, skipping tick", "path", s.lock.Path())
			return false
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.log.Error("sweep unlock failed", "path", s.lock.Path(), "error", err)
			}
		}()
	}

	res, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Error("sweep failed", "error", err)
		return true
	}
	s.log.Debug("sweep finished", "checked", res.Checked, "stopped", res.Stopped, "failed", res.Failed)
	return true
}
