package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/timecalc"
)

type statsService struct {
	store    repository.Store
	agg      aggregator
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewStatsService(store repository.Store, clock Clock, logger *slog.Logger, observers ...UseCaseObserver) StatsService {
	return &statsService{
		store:    store,
		agg:      aggregator{clock: clock},
		logger:   loggerOrDiscard(logger),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *statsService) Window(kind domain.PeriodKind, periodStart *domain.Date) domain.PeriodWindow {
	today := s.agg.projector().Date(s.agg.clock.Now())
	return timecalc.ResolvePeriod(kind, periodStart, today)
}

func (s *statsService) Stats(ctx context.Context, userID string, kind domain.PeriodKind, periodStart *domain.Date) (st *domain.PeriodStats, err error) {
	fields := map[string]any{"user_id": userID, "period": string(kind)}
	defer observe(ctx, s.observer, "stats", fields, &err)()

	w := s.Window(kind, periodStart)
	fields["window_start"] = w.Start.String()

	r := s.store.Repos()
	if _, err = r.Users.GetByID(ctx, userID); err != nil {
		return nil, classify(ctx, s.logger, "stats", err)
	}
	st, err = s.agg.stats(ctx, r.Sessions, userID, w)
	if err != nil {
		return nil, classify(ctx, s.logger, "stats", err)
	}
	fields["total_hours"] = st.TotalHours
	return st, nil
}

func (s *statsService) DayTotal(ctx context.Context, userID string, at time.Time) (float64, error) {
	total, err := s.agg.dayTotal(ctx, s.store.Repos().Sessions, userID, at)
	if err != nil {
		return 0, classify(ctx, s.logger, "day-total", err)
	}
	return total, nil
}
