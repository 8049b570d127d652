package service

import (
	"context"
	"log/slog"

	"github.com/unclebandit/campaignhub-backend/internal/queue"
)

// publish is fire-and-forget: a failed publish is logged and never changes
// the outcome of the operation that produced the event.
func publish(ctx context.Context, p queue.Publisher, e queue.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), e); err != nil {
		slog.WarnContext(ctx, "⚠️ failed to publish event", "type", e.Type, "resource_id", e.ResourceID, "error", err)
	}
}
