package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
	"github.com/redis/go-redis/v9"
)

// Event types appended to the payment stream.
const (
	EventRefunded         = "payment.refunded"
	EventCredentialStored = "credential.stored"
)

// EventPublisher appends payment lifecycle events to a Redis stream.
type EventPublisher struct {
	client  redis.UniversalClient
	stream  string
	metrics *observability.Metrics
}

func NewEventPublisher(client redis.UniversalClient, stream string, metrics *observability.Metrics) *EventPublisher {
	return &EventPublisher{client: client, stream: stream, metrics: metrics}
}

func (p *EventPublisher) Publish(ctx context.Context, paymentID, eventType string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"payment_id": paymentID,
			"event_type": eventType,
			"payload":    string(payload),
			"timestamp":  time.Now().Unix(),
		},
	}).Err()

	p.record(err)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

func (p *EventPublisher) record(err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.EventsPublished.WithLabelValues(p.stream, status).Inc()
}
