package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alexanderramin/punchclock/internal/repository"
)

// Error kinds. Match them with errors.Is.
var (
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Error is a failure the caller can render directly. Reason is safe to
// show; Ref correlates an internal failure with its log record.
type Error struct {
	Kind   error
	Reason string
	Ref    string
	cause  error
}

func (e *Error) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s (ref %s)", e.Reason, e.Ref)
	}
	return e.Reason
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

func conflict(reason string) error   { return &Error{Kind: ErrConflict, Reason: reason} }
func forbidden(reason string) error  { return &Error{Kind: ErrForbidden, Reason: reason} }
func notFound(reason string) error   { return &Error{Kind: ErrNotFound, Reason: reason} }
func badRequest(reason string) error { return &Error{Kind: ErrBadRequest, Reason: reason} }

// Reasons rendered to users.
const (
	ReasonSessionRunning  = "session already running"
	ReasonMissingBank     = "missing bank details"
	ReasonCapReached      = "daily cap already reached"
	ReasonNoActiveSession = "no active session"
	ReasonInvalidTime     = "invalid time format"
	ReasonEndBeforeStart  = "end time before start time"
)

// internalError hides err behind a generic message and logs it under a
// fresh correlation reference.
func internalError(ctx context.Context, logger *slog.Logger, op string, err error) error {
	ref := uuid.New().String()
	logger.ErrorContext(ctx, "internal failure", "op", op, "ref", ref, "error", err)
	return &Error{Kind: ErrInternal, Reason: "internal error", Ref: ref, cause: err}
}

// classify passes typed errors through, maps repository sentinels onto the
// taxonomy and treats anything else as internal.
func classify(ctx context.Context, logger *slog.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrActiveSessionExists):
		return conflict(ReasonSessionRunning)
	case errors.Is(err, repository.ErrNotFound):
		return notFound(err.Error())
	case errors.Is(err, repository.ErrDuplicate):
		return conflict(err.Error())
	}
	return internalError(ctx, logger, op, err)
}

// IsInternal reports whether err is not one of the expected outcomes
// above.
func IsInternal(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == ErrInternal
	}
	return true
}
