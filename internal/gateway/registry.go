package gateway

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BreakerSettings configures the circuit breaker placed in front of each gateway.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings mirrors the values used when no config is supplied.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  10,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

type entry struct {
	gateway   Gateway
	completer Completer
}

// Registry holds named gateways, each wrapped with a circuit breaker,
// tracing and metrics. Completion support is resolved once at registration.
type Registry struct {
	settings BreakerSettings
	metrics  *observability.Metrics
	entries  map[string]entry
}

func NewRegistry(settings BreakerSettings, metrics *observability.Metrics, gateways ...Gateway) *Registry {
	r := &Registry{
		settings: settings,
		metrics:  metrics,
		entries:  make(map[string]entry),
	}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g Gateway) {
	gd := &guarded{
		inner:   g,
		metrics: r.metrics,
		breaker: gobreaker.NewCircuitBreaker[Response](gobreaker.Settings{
			Name:        g.Name(),
			MaxRequests: r.settings.MaxRequests,
			Interval:    r.settings.Interval,
			Timeout:     r.settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= r.settings.MinRequests && failureRatio >= r.settings.FailureRatio
			},
			OnStateChange: func(name string, _ gobreaker.State, to gobreaker.State) {
				if r.metrics != nil {
					r.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
				}
			},
		}),
	}

	e := entry{gateway: gd}
	if c, ok := g.(Completer); ok {
		e.completer = &guardedCompleter{guarded: gd, completer: c}
	}
	r.entries[g.Name()] = e
}

// Lookup returns the named gateway and, when it supports one, its completion step.
func (r *Registry) Lookup(name string) (Gateway, Completer, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown gateway %q: %w", name, domainErrors.ErrGatewayNotFound)
	}
	return e.gateway, e.completer, nil
}

// guarded decorates a Gateway with a breaker, a span and call metrics.
type guarded struct {
	inner   Gateway
	breaker *gobreaker.CircuitBreaker[Response]
	metrics *observability.Metrics
}

func (g *guarded) Name() string { return g.inner.Name() }

func (g *guarded) Refund(ctx context.Context, req RefundRequest) (Response, error) {
	return g.call(ctx, "refund", func(ctx context.Context) (Response, error) {
		return g.inner.Refund(ctx, req)
	})
}

func (g *guarded) CreateCard(ctx context.Context, req CreateRequest) (Response, error) {
	return g.call(ctx, "create_card", func(ctx context.Context) (Response, error) {
		return g.inner.CreateCard(ctx, req)
	})
}

func (g *guarded) CreateCustomer(ctx context.Context, req CreateRequest) (Response, error) {
	return g.call(ctx, "create_customer", func(ctx context.Context) (Response, error) {
		return g.inner.CreateCustomer(ctx, req)
	})
}

func (g *guarded) call(ctx context.Context, operation string, fn func(context.Context) (Response, error)) (Response, error) {
	ctx, span := otel.Tracer("gateway").Start(ctx, "gateway."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("gateway.name", g.inner.Name()))

	start := time.Now()
	resp, err := g.breaker.Execute(func() (Response, error) {
		return fn(ctx)
	})
	if err == nil && resp == nil {
		err = fmt.Errorf("%s returned no response: %w", g.inner.Name(), domainErrors.ErrGatewayUnavailable)
	}

	out := outcome(resp, err)
	span.SetAttributes(attribute.String("gateway.outcome", out))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if g.metrics != nil {
		g.metrics.GatewayCallsTotal.WithLabelValues(g.inner.Name(), operation, out).Inc()
		g.metrics.GatewayCallDuration.WithLabelValues(g.inner.Name(), operation).Observe(time.Since(start).Seconds())
	}
	return resp, err
}

func outcome(resp Response, err error) string {
	switch {
	case err != nil:
		return "error"
	case resp.IsSuccessful():
		return "success"
	case resp.IsRedirect():
		return "redirect"
	default:
		return "declined"
	}
}

type guardedCompleter struct {
	*guarded
	completer Completer
}

func (g *guardedCompleter) CompleteCreateCard(ctx context.Context, req CompleteRequest) (Response, error) {
	return g.call(ctx, "complete_create_card", func(ctx context.Context) (Response, error) {
		return g.completer.CompleteCreateCard(ctx, req)
	})
}

func (g *guardedCompleter) CompleteCreateCustomer(ctx context.Context, req CompleteRequest) (Response, error) {
	return g.call(ctx, "complete_create_customer", func(ctx context.Context) (Response, error) {
		return g.completer.CompleteCreateCustomer(ctx, req)
	})
}
