package db

import (
	"context"
	"log/slog"
	"time"
)

// LogHook writes one structured entry per statement.
type LogHook struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

func NewLogHook(logger *slog.Logger, slowThreshold time.Duration) *LogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHook{logger: logger, slowThreshold: slowThreshold}
}

func (h *LogHook) After(ctx context.Context, query string, d time.Duration, err error) {
	if h == nil {
		return
	}
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}

	if err != nil && !IsDuplicateKey(err) {
		h.logger.ErrorContext(ctx, "db: query error", append(attrs, slog.Any("error", err))...)
		return
	}
	if h.slowThreshold > 0 && d > h.slowThreshold {
		h.logger.WarnContext(ctx, "db: slow query", attrs...)
		return
	}
	h.logger.DebugContext(ctx, "db: query", attrs...)
}

func trimQuery(q string) string {
	if len(q) > 300 {
		return q[:300] + "…"
	}
	return q
}
