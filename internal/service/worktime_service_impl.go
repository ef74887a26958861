package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/punchclock/internal/db"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/timecalc"
)

type worktimeService struct {
	store    repository.Store
	clock    Clock
	agg      aggregator
	locks    *UserLocks
	notifier Notifier
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewWorktimeService(
	store repository.Store,
	clock Clock,
	locks *UserLocks,
	notifier Notifier,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) WorktimeService {
	if locks == nil {
		locks = NewUserLocks()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &worktimeService{
		store:    store,
		clock:    clock,
		agg:      aggregator{clock: clock},
		locks:    locks,
		notifier: notifier,
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

// parseOptionalInstant returns fallback for an empty string.
func parseOptionalInstant(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := timecalc.ParseInstant(s)
	if err != nil {
		return time.Time{}, badRequest(ReasonInvalidTime)
	}
	return t, nil
}

// orNotFound replaces a repository miss with a typed NotFound.
func orNotFound(err error, reason string) error {
	if isNotFound(err) {
		return notFound(reason)
	}
	return err
}

func (s *worktimeService) Start(ctx context.Context, req StartRequest) (sess *domain.WorkSession, err error) {
	fields := map[string]any{"user_id": req.UserID, "branch_id": req.BranchID}
	defer observe(ctx, s.observer, "start", fields, &err)()

	now := s.clock.Now()
	start, err := parseOptionalInstant(req.StartTime, now)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.UserID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Sessions.FindActiveByUser(ctx, req.UserID); err == nil {
			return conflict(ReasonSessionRunning)
		} else if !isNotFound(err) {
			return err
		}

		user, err := r.Users.GetByID(ctx, req.UserID)
		if err != nil {
			return orNotFound(err, "user not found")
		}
		if !user.HasBankDetails() {
			return forbidden(ReasonMissingBank)
		}
		branch, err := r.Branches.GetByID(ctx, req.BranchID)
		if err != nil {
			return orNotFound(err, "branch not found")
		}

		worked, err := s.agg.dayTotal(ctx, r.Sessions, req.UserID, now)
		if err != nil {
			return err
		}
		fields["worked_today"] = round1(worked)
		if worked >= user.NormalWorkingHours {
			return forbidden(ReasonCapReached)
		}

		org := req.OrganizationID
		if org == nil {
			org = user.OrganizationID
		}
		sess = &domain.WorkSession{
			ID:             uuid.New().String(),
			UserID:         req.UserID,
			BranchID:       branch.ID,
			BranchName:     branch.Name,
			StartTime:      start.UTC(),
			Timezone:       timecalc.ZoneName(s.clock.Location()),
			OrganizationID: org,
			CreatedAt:      now.UTC(),
			UpdatedAt:      now.UTC(),
		}
		if err := r.Sessions.Create(ctx, sess); err != nil {
			return err
		}
		note := startedNotification(sess)
		db.OnCommit(ctx, func() { s.notifier.Enqueue(note) })
		return nil
	})
	if err != nil {
		return nil, classify(ctx, s.logger, "start", err)
	}
	fields["session_id"] = sess.ID
	return sess, nil
}

func (s *worktimeService) Stop(ctx context.Context, req StopRequest) (sess *domain.WorkSession, err error) {
	fields := map[string]any{"user_id": req.UserID, "force": req.Force}
	defer observe(ctx, s.observer, "stop", fields, &err)()

	end, err := parseOptionalInstant(req.EndTime, s.clock.Now())
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.UserID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		active, err := r.Sessions.FindActiveByUser(ctx, req.UserID)
		if err != nil {
			return orNotFound(err, ReasonNoActiveSession)
		}
		if end.Before(active.StartTime) && !req.Force {
			return badRequest(ReasonEndBeforeStart)
		}
		active.Close(end, timecalc.ZoneName(s.clock.Location()))
		if err := r.Sessions.Update(ctx, active); err != nil {
			return err
		}
		note := stoppedNotification(active)
		db.OnCommit(ctx, func() { s.notifier.Enqueue(note) })
		sess = active
		return nil
	})
	if err != nil {
		return nil, classify(ctx, s.logger, "stop", err)
	}
	fields["session_id"] = sess.ID
	return sess, nil
}

func (s *worktimeService) Active(ctx context.Context, userID string) (sess *domain.WorkSession, err error) {
	defer observe(ctx, s.observer, "active", map[string]any{"user_id": userID}, &err)()

	sess, err = s.store.Repos().Sessions.FindActiveByUser(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, classify(ctx, s.logger, "active", err)
	}
	return sess, nil
}

func (s *worktimeService) ListForDate(ctx context.Context, userID, date string) (list []*domain.WorkSession, err error) {
	fields := map[string]any{"user_id": userID, "date": date}
	defer observe(ctx, s.observer, "list-sessions", fields, &err)()

	sessions := s.store.Repos().Sessions
	if date == "" {
		list, err = sessions.ListByUser(ctx, userID)
		return list, classify(ctx, s.logger, "list-sessions", err)
	}
	d, perr := domain.ParseDate(date)
	if perr != nil {
		return nil, badRequest("invalid date format")
	}
	p := timecalc.NewProjector(s.clock.Location())
	list, err = sessions.ListByUserInRange(ctx, userID, p.StartOfDay(d), p.NextMidnight(d))
	return list, classify(ctx, s.logger, "list-sessions", err)
}

func (s *worktimeService) Update(ctx context.Context, sessionID string, upd SessionUpdate) (sess *domain.WorkSession, err error) {
	fields := map[string]any{"session_id": sessionID}
	defer observe(ctx, s.observer, "update-session", fields, &err)()

	var start, end *time.Time
	if upd.StartTime != nil {
		t, perr := timecalc.ParseInstant(*upd.StartTime)
		if perr != nil {
			return nil, badRequest(ReasonInvalidTime)
		}
		start = &t
	}
	if upd.EndTime != nil && !upd.ClearEnd {
		t, perr := timecalc.ParseInstant(*upd.EndTime)
		if perr != nil {
			return nil, badRequest(ReasonInvalidTime)
		}
		end = &t
	}

	current, err := s.store.Repos().Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, classify(ctx, s.logger, "update-session", orNotFound(err, "session not found"))
	}
	fields["user_id"] = current.UserID
	unlock := s.locks.Lock(current.UserID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		target, err := r.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return orNotFound(err, "session not found")
		}
		if start != nil {
			target.StartTime = start.UTC()
		}
		switch {
		case upd.ClearEnd:
			target.EndTime = nil
		case end != nil:
			e := end.UTC()
			target.EndTime = &e
		}
		if upd.BranchID != nil {
			branch, err := r.Branches.GetByID(ctx, *upd.BranchID)
			if err != nil {
				return orNotFound(err, "branch not found")
			}
			target.BranchID, target.BranchName = branch.ID, branch.Name
		}
		if target.EndTime != nil && target.EndTime.Before(target.StartTime) {
			return badRequest(ReasonEndBeforeStart)
		}
		if target.Active() {
			other, err := r.Sessions.FindActiveByUser(ctx, target.UserID)
			switch {
			case err == nil && other.ID != target.ID:
				return conflict(ReasonSessionRunning)
			case err != nil && !isNotFound(err):
				return err
			}
		}
		if err := r.Sessions.Update(ctx, target); err != nil {
			return err
		}
		sess = target
		return nil
	})
	if err != nil {
		return nil, classify(ctx, s.logger, "update-session", err)
	}
	return sess, nil
}

func (s *worktimeService) Delete(ctx context.Context, sessionID string) (err error) {
	defer observe(ctx, s.observer, "delete-session", map[string]any{"session_id": sessionID}, &err)()

	if err = s.store.Repos().Sessions.Delete(ctx, sessionID); err != nil {
		return classify(ctx, s.logger, "delete-session", orNotFound(err, "session not found"))
	}
	return nil
}
