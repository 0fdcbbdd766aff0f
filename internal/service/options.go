package service

import (
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// GatewayResolver finds the gateway a payment was made through.
// The Completer is nil when the gateway has no dedicated completion step.
type GatewayResolver interface {
	Lookup(name string) (gateway.Gateway, gateway.Completer, error)
}

type options struct {
	hooks   *Hooks
	locker  Locker
	metrics *observability.Metrics
	logger  zerolog.Logger
}

// Option configures an orchestrator.
type Option func(*options)

func WithHooks(h *Hooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithLocker serializes operations per payment identifier.
func WithLocker(l Locker) Option {
	return func(o *options) { o.locker = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
