package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/timecalc"
)

// DefaultSweepItemTimeout bounds the work spent on one running session.
const DefaultSweepItemTimeout = 10 * time.Second

type sweepService struct {
	store       repository.Store
	clock       Clock
	agg         aggregator
	locks       *UserLocks
	notifier    Notifier
	itemTimeout time.Duration
	logger      *slog.Logger
	observer    UseCaseObserver
}

// NewSweepService builds the overrun sweeper. It must share locks with the
// worktime service so a sweep and a manual stop never race on one user.
func NewSweepService(
	store repository.Store,
	clock Clock,
	locks *UserLocks,
	notifier Notifier,
	itemTimeout time.Duration,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) SweepService {
	if locks == nil {
		locks = NewUserLocks()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if itemTimeout <= 0 {
		itemTimeout = DefaultSweepItemTimeout
	}
	return &sweepService{
		store:       store,
		clock:       clock,
		agg:         aggregator{clock: clock},
		locks:       locks,
		notifier:    notifier,
		itemTimeout: itemTimeout,
		logger:      loggerOrDiscard(logger),
		observer:    useCaseObserverOrNoop(observers),
	}
}

// Sweep closes every running session whose user has reached the daily
// cap. A failure on one session is logged and the sweep moves on; only a
// failure to list running sessions is returned.
func (s *sweepService) Sweep(ctx context.Context) (res SweepResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "sweep", fields, &err)()

	active, err := s.store.Repos().Sessions.ListActive(ctx)
	if err != nil {
		return res, classify(ctx, s.logger, "sweep", err)
	}
	for _, sess := range active {
		if ctx.Err() != nil {
			break
		}
		res.Checked++
		stopped, err := s.sweepOne(ctx, sess.ID, sess.UserID)
		if err != nil {
			res.Failed++
			s.logger.ErrorContext(ctx, "sweep: session check failed",
				"session_id", sess.ID, "user_id", sess.UserID, "error", err)
			continue
		}
		if stopped {
			res.Stopped++
		}
	}
	fields["checked"] = res.Checked
	fields["stopped"] = res.Stopped
	fields["failed"] = res.Failed
	return res, ctx.Err()
}

func (s *sweepService) sweepOne(ctx context.Context, sessionID, userID string) (stopped bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	unlock := s.locks.Lock(userID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		sess, err := r.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		if !sess.Active() {
			// Closed since the listing.
			return nil
		}
		user, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}

		now := s.clock.Now()
		worked, err := s.agg.dayTotal(ctx, r.Sessions, userID, now)
		if err != nil {
			return fmt.Errorf("computing day total: %w", err)
		}
		if worked < user.NormalWorkingHours {
			return nil
		}

		sess.Close(now, timecalc.ZoneName(s.clock.Location()))
		if err := r.Sessions.Update(ctx, sess); err != nil {
			return fmt.Errorf("closing session: %w", err)
		}
		note := autoStoppedNotification(sess, user.NormalWorkingHours)
		db.OnCommit(ctx, func() { s.notifier.Enqueue(note) })
		s.logger.InfoContext(ctx, "sweep: session stopped at daily cap",
			"session_id", sess.ID, "user_id", userID,
			"worked_hours", round1(worked), "cap_hours", user.NormalWorkingHours,
			"zone", sess.Location().String())
		stopped = true
		return nil
	})
	return stopped, err
}

