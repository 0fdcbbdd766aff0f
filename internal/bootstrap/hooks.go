package bootstrap

import (
	"context"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/payment-orchestrator/internal/infrastructure/redis"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"github.com/rs/zerolog"
)

// EventPublisher appends lifecycle events to an external stream.
type EventPublisher interface {
	Publish(ctx context.Context, paymentID, eventType string, data map[string]any) error
}

// NewHooks subscribes refund metrics and event publishing to the orchestrator
// hooks. Either dependency may be nil. Publish failures are logged and never
// fail the payment operation, which has already been committed.
func NewHooks(metrics *observability.Metrics, publisher EventPublisher, logger zerolog.Logger) *service.Hooks {
	hooks := service.NewHooks()

	if metrics != nil {
		hooks.OnRefunded(func(ctx context.Context, p *payment.Payment, amount payment.Money, resp *service.GatewayResponse) {
			metrics.RefundsTotal.WithLabelValues(string(p.Status)).Inc()
			metrics.RefundedAmount.WithLabelValues(amount.Currency).Add(amount.Amount.InexactFloat64())
		})
	}

	if publisher != nil {
		hooks.OnRefunded(func(ctx context.Context, p *payment.Payment, amount payment.Money, resp *service.GatewayResponse) {
			publish(ctx, publisher, logger, p, infraRedis.EventRefunded, map[string]any{
				"identifier":      p.Identifier,
				"status":          string(p.Status),
				"amount":          amount.Amount.String(),
				"currency":        amount.Currency,
				"remaining":       p.Money.Amount.String(),
				"refunded_amount": p.RefundedAmount.String(),
			})
		})
		hooks.OnCredentialStored(func(ctx context.Context, p *payment.Payment, c *credential.Credential) {
			publish(ctx, publisher, logger, p, infraRedis.EventCredentialStored, map[string]any{
				"identifier":    p.Identifier,
				"credential_id": c.ID.String(),
				"kind":          string(c.Kind),
				"last_four":     c.LastFourDigits,
			})
		})
	}

	return hooks
}

func publish(ctx context.Context, publisher EventPublisher, logger zerolog.Logger, p *payment.Payment, eventType string, data map[string]any) {
	if err := publisher.Publish(context.WithoutCancel(ctx), p.ID.String(), eventType, data); err != nil {
		logger.Warn().Err(err).
			Str("payment_id", p.ID.String()).
			Str("event_type", eventType).
			Msg("failed to publish payment event")
	}
}
