package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/cassiomorais/payment-orchestrator/internal/infrastructure/config"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"github.com/cassiomorais/payment-orchestrator/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// apiFixture wires the real services over in-memory repositories behind the
// production router.
type apiFixture struct {
	router      *chi.Mux
	payments    *testutil.MockPaymentRepository
	credentials *testutil.MockCredentialRepository
	audit       *testutil.MockAuditLog
	gw          *testutil.StubGateway
	completer   *testutil.StubCompleter
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		payments:    testutil.NewMockPaymentRepository(),
		credentials: testutil.NewMockCredentialRepository(),
		audit:       testutil.NewMockAuditLog(),
		gw:          testutil.NewStubGateway("stub"),
		completer:   &testutil.StubCompleter{},
	}
	resolver := testutil.NewMockResolver().Add(f.gw, f.completer)
	txManager := testutil.NewMockTransactionManager()

	f.router = NewRouter(RouterDeps{
		PaymentService: service.NewPaymentService(f.payments, f.audit, resolver, txManager),
		RefundService:  service.NewRefundService(f.payments, f.audit, resolver, txManager),
		CredentialService: service.NewCredentialService(
			f.payments, f.credentials, f.audit, resolver, txManager,
			service.NewEndpoints("https://shop.example.com"),
		),
		DefaultGateway: "stub",
		Logger:         zerolog.Nop(),
		ServerConfig: config.ServerConfig{
			CORS:              config.CORSConfig{AllowedOrigins: []string{"*"}},
			CallbackRateLimit: 1000,
		},
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}
