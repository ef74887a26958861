package service

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/alexanderramin/punchclock/internal/repository"
)

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// formatHours renders an hour value without trailing zeros.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
