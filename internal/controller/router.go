package controller

import (
	"time"

	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/config"
	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/payment-orchestrator/internal/middleware"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Pool              *pgxpool.Pool
	RedisClient       redis.UniversalClient
	PaymentService    *service.PaymentService
	RefundService     *service.RefundService
	CredentialService *service.CredentialService
	DefaultGateway    string
	Metrics           *observability.Metrics
	Logger            zerolog.Logger
	ServerConfig      config.ServerConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.ServerConfig.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.ServerConfig.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.PaymentService, deps.RefundService, deps.CredentialService, deps.DefaultGateway)
	gatewayH := NewGatewayController(deps.PaymentService, deps.CredentialService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/payments", paymentH.CreatePayment)
		r.Get("/payments/{id}", paymentH.GetPayment)
		r.Get("/payments/{id}/messages", paymentH.ListMessages)
		r.Post("/payments/{id}/refund", paymentH.RefundPayment)

		// Stored credentials
		r.Post("/payments/{id}/cards", paymentH.CreateCard)
		r.Put("/payments/{id}/cards", paymentH.UpdateCard)
		r.Delete("/payments/{id}/cards", paymentH.DeleteCard)
		r.Post("/payments/{id}/customers", paymentH.CreateCustomer)
	})

	// Gateway callbacks are public and addressed by payment identifier.
	r.Route("/gateway", func(r chi.Router) {
		r.Use(customMW.CallbackRateLimit(deps.ServerConfig.CallbackRateLimit))
		r.Get("/complete/{identifier}", gatewayH.Complete)
		r.Post("/complete/{identifier}", gatewayH.Complete)
		r.Post("/notify/{identifier}", gatewayH.Notify)
	})

	return r
}
