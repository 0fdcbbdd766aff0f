package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/google/uuid"
)

// MockGateway simulates a remote processor for local runs and tests.
type MockGateway struct {
	name         string
	failureRate  float64 // 0.0 to 1.0
	timeoutRate  float64 // 0.0 to 1.0
	redirectRate float64 // 0.0 to 1.0, create operations only
	latency      time.Duration
	offsiteURL   string
}

type MockOption func(*MockGateway)

func WithFailureRate(rate float64) MockOption {
	return func(g *MockGateway) { g.failureRate = rate }
}

func WithTimeoutRate(rate float64) MockOption {
	return func(g *MockGateway) { g.timeoutRate = rate }
}

func WithRedirectRate(rate float64) MockOption {
	return func(g *MockGateway) { g.redirectRate = rate }
}

func WithLatency(d time.Duration) MockOption {
	return func(g *MockGateway) { g.latency = d }
}

// WithOffsiteURL sets the page the simulated offsite flow redirects to.
func WithOffsiteURL(u string) MockOption {
	return func(g *MockGateway) { g.offsiteURL = u }
}

func NewMockGateway(name string, opts ...MockOption) *MockGateway {
	g := &MockGateway{
		name:       name,
		latency:    50 * time.Millisecond,
		offsiteURL: "https://offsite.example.com/authorize",
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *MockGateway) Name() string { return g.name }

func (g *MockGateway) Refund(ctx context.Context, req RefundRequest) (Response, error) {
	if err := g.simulate(ctx); err != nil {
		return nil, err
	}
	if rand.Float64() < g.failureRate {
		return g.declined("refund", req.TransactionReference), nil
	}
	return &Result{
		Successful:  true,
		TxReference: g.reference("refund"),
		Raw:         map[string]any{"amount": req.Amount.String(), "currency": req.Currency},
	}, nil
}

func (g *MockGateway) CreateCard(ctx context.Context, req CreateRequest) (Response, error) {
	return g.create(ctx, "card", req)
}

func (g *MockGateway) CreateCustomer(ctx context.Context, req CreateRequest) (Response, error) {
	return g.create(ctx, "cus", req)
}

func (g *MockGateway) CompleteCreateCard(ctx context.Context, req CompleteRequest) (Response, error) {
	return g.complete(ctx, "card", req)
}

func (g *MockGateway) CompleteCreateCustomer(ctx context.Context, req CompleteRequest) (Response, error) {
	return g.complete(ctx, "cus", req)
}

func (g *MockGateway) create(ctx context.Context, prefix string, req CreateRequest) (Response, error) {
	if err := g.simulate(ctx); err != nil {
		return nil, err
	}
	if rand.Float64() < g.failureRate {
		return g.declined("tokenization", req.TransactionID), nil
	}
	if rand.Float64() < g.redirectRate {
		return &Result{
			Redirect:    true,
			TxReference: req.TransactionID,
			RedirectTo:  fmt.Sprintf("%s?transaction=%s&return=%s", g.offsiteURL, req.TransactionID, req.ReturnURL),
		}, nil
	}
	return g.token(prefix, req.TransactionID), nil
}

func (g *MockGateway) complete(ctx context.Context, prefix string, req CompleteRequest) (Response, error) {
	if err := g.simulate(ctx); err != nil {
		return nil, err
	}
	if rand.Float64() < g.failureRate {
		return g.declined("completion", req.TransactionID), nil
	}
	return g.token(prefix, req.TransactionID), nil
}

func (g *MockGateway) token(prefix, txID string) *Result {
	ref := g.reference(prefix)
	r := &Result{Successful: true, TxReference: txID}
	if prefix == "card" {
		r.CardRef = ref
	} else {
		r.CustomerRef = ref
	}
	return r
}

func (g *MockGateway) declined(operation, txID string) *Result {
	return &Result{
		ErrorCode:   "declined",
		Text:        fmt.Sprintf("%s: simulated %s failure", g.name, operation),
		TxReference: txID,
	}
}

func (g *MockGateway) reference(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", g.name, prefix, uuid.New().String()[:8])
}

// simulate waits for the configured latency and injects timeouts.
func (g *MockGateway) simulate(ctx context.Context) error {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return ctx.Err()
	}
	if rand.Float64() < g.timeoutRate {
		return domainErrors.ErrGatewayTimeout
	}
	return nil
}
