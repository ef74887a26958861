package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/repository"
)

// NotificationRequest is one worktime notification to deliver.
type NotificationRequest struct {
	UserID          string
	Title           string
	Message         string
	Kind            domain.NotificationKind
	RelatedEntityID string
}

// Notifier delivers notifications without blocking or failing the caller.
type Notifier interface {
	Enqueue(n NotificationRequest)
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) Enqueue(NotificationRequest) {}

// AsyncNotifier stores notifications from a single background worker. The
// queue is bounded; when it is full new notifications are dropped and
// logged. Users who disabled notifications get none.
type AsyncNotifier struct {
	store  repository.Store
	clock  Clock
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan NotificationRequest
	done   chan struct{}
}

// NewAsyncNotifier starts the worker. Close stops it after draining.
func NewAsyncNotifier(store repository.Store, clock Clock, queueSize int, logger *slog.Logger) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	n := &AsyncNotifier{
		store:  store,
		clock:  clock,
		logger: loggerOrDiscard(logger),
		queue:  make(chan NotificationRequest, queueSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *AsyncNotifier) Enqueue(req NotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		n.logger.Warn("notification dropped after close", "user_id", req.UserID, "kind", req.Kind)
		return
	}
	select {
	case n.queue <- req:
	default:
		n.logger.Warn("notification queue full, dropping", "user_id", req.UserID, "kind", req.Kind)
	}
}

// Close delivers what is queued and stops the worker.
func (n *AsyncNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for req := range n.queue {
		if err := n.deliver(context.Background(), req); err != nil {
			n.logger.Error("notification delivery failed",
				"user_id", req.UserID, "kind", req.Kind, "error", err)
		}
	}
}

func (n *AsyncNotifier) deliver(ctx context.Context, req NotificationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r := n.store.Repos()
	user, err := r.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if !user.NotificationsEnabled {
		return nil
	}
	return r.Notifications.Create(ctx, &domain.Notification{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Title:           req.Title,
		Message:         req.Message,
		Type:            domain.NotificationWorktime,
		Kind:            req.Kind,
		RelatedEntityID: req.RelatedEntityID,
		CreatedAt:       n.clock.Now().UTC(),
	})
}

func startedNotification(s *domain.WorkSession) NotificationRequest {
	return NotificationRequest{
		UserID:          s.UserID,
		Title:           "Worktime started",
		Message:         fmt.Sprintf("Your worktime at %s started.", branchLabel(s)),
		Kind:            domain.NotifyStart,
		RelatedEntityID: s.ID,
	}
}

func stoppedNotification(s *domain.WorkSession) NotificationRequest {
	return NotificationRequest{
		UserID:          s.UserID,
		Title:           "Worktime stopped",
		Message:         fmt.Sprintf("Your worktime at %s was stopped.", branchLabel(s)),
		Kind:            domain.NotifyStop,
		RelatedEntityID: s.ID,
	}
}

func autoStoppedNotification(s *domain.WorkSession, capHours float64) NotificationRequest {
	return NotificationRequest{
		UserID: s.UserID,
		Title:  "Worktime stopped automatically",
		Message: fmt.Sprintf("Your worktime was stopped automatically because you reached your daily limit of %s hours.",
			formatHours(capHours)),
		Kind:            domain.NotifyAutoStop,
		RelatedEntityID: s.ID,
	}
}

func branchLabel(s *domain.WorkSession) string {
	if s.BranchName != "" {
		return s.BranchName
	}
	return "your branch"
}
