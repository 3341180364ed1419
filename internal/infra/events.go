package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Domain event types published after a transaction commits.
const (
	EventSaleCreated          = "sale.created"
	EventCashSessionClosed    = "cash_session.closed"
	EventCreditPaymentApplied = "credit_payment.applied"
	EventInventoryAdjusted    = "inventory.adjusted"
)

// Event is the envelope written to the events topic. Key is the id of the
// aggregate, so all events of one aggregate land on the same partition.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"event_type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"timestamp"`
	Data       any       `json:"data"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType, key string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// KafkaPublisher writes domain events to a single topic. Writes are async so
// a slow broker never holds up a request; delivery failures are logged and
// counted in the completion callback.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		Async:        true,
		Completion:   reportDelivery,
	}}
}

func reportDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		var ev Event
		_ = json.Unmarshal(m.Value, &ev)
		EventsPublishFailedTotal.WithLabelValues(ev.Type).Inc()
		log.Error().Err(err).Str("type", ev.Type).Str("key", string(m.Key)).Msg("event delivery failed")
	}
}

// Publish serializes ev and hands it to the writer.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	msg := kafka.Message{Key: []byte(ev.Key), Value: value, Time: ev.OccurredAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		EventsPublishFailedTotal.WithLabelValues(ev.Type).Inc()
		return fmt.Errorf("write event %s: %w", ev.Type, err)
	}
	log.Debug().Str("type", ev.Type).Str("key", ev.Key).Msg("event queued")
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
