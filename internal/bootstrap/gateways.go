package bootstrap

import (
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/config"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
)

// NewGatewayRegistry registers one simulated gateway per configured name,
// each behind its own circuit breaker.
func NewGatewayRegistry(cfg config.GatewayConfig, metrics *observability.Metrics) *gateway.Registry {
	reg := gateway.NewRegistry(gateway.BreakerSettings{
		MaxRequests:  cfg.BreakerMaxRequests,
		Interval:     cfg.BreakerInterval,
		Timeout:      cfg.BreakerTimeout,
		MinRequests:  cfg.BreakerMinRequests,
		FailureRatio: cfg.BreakerFailureRatio,
	}, metrics)

	for _, name := range cfg.Mock.Names {
		reg.Register(gateway.NewMockGateway(name,
			gateway.WithLatency(cfg.Mock.Latency),
			gateway.WithFailureRate(cfg.Mock.FailureRate),
			gateway.WithTimeoutRate(cfg.Mock.TimeoutRate),
			gateway.WithRedirectRate(cfg.Mock.RedirectRate),
			gateway.WithOffsiteURL(cfg.Mock.OffsiteURL),
		))
	}
	return reg
}
