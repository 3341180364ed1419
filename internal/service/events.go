package service

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	"github.com/rs/zerolog/log"
)

// EventPublisher receives domain events after commit. *infra.KafkaPublisher
// implements it; a nil publisher drops events.
type EventPublisher interface {
	Publish(ctx context.Context, ev infra.Event) error
}

// publish is best-effort: the transaction has committed, so failures are
// only logged.
func publish(ctx context.Context, p EventPublisher, eventType, key string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, infra.NewEvent(eventType, key, data)); err != nil {
		log.Warn().Err(err).Str("type", eventType).Str("key", key).Msg("event publish failed")
	}
}

// enqueueEmail is best-effort like publish.
func enqueueEmail(ctx context.Context, d *worker.Dispatcher, to string, payload worker.EmailJobPayload) {
	if d == nil || to == "" {
		return
	}
	payload.ToEmail = to
	if err := d.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("subject", payload.Subject).Msg("email enqueue failed")
	}
}
