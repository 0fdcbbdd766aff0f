package controller

import (
	"net/http"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// GatewayController receives the return and notify callbacks gateways send
// after an offsite step. Payments are addressed by their public identifier.
type GatewayController struct {
	payments    *service.PaymentService
	credentials *service.CredentialService
}

func NewGatewayController(payments *service.PaymentService, credentials *service.CredentialService) *GatewayController {
	return &GatewayController{payments: payments, credentials: credentials}
}

// Complete handles GET|POST /gateway/complete/{identifier}?kind=card
func (h *GatewayController) Complete(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, "return")
}

// Notify handles POST /gateway/notify/{identifier}?kind=card
func (h *GatewayController) Notify(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, "notify")
}

func (h *GatewayController) complete(w http.ResponseWriter, r *http.Request, source string) {
	kind, err := credential.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}

	identifier := chi.URLParam(r, "identifier")
	p, err := h.payments.GetPaymentByIdentifier(r.Context(), identifier)
	if err != nil {
		writeError(w, err)
		return
	}

	cancelled := r.URL.Query().Get("cancel") != ""
	params := requestParams(r, "kind", "cancel")
	log.Ctx(r.Context()).Info().
		Str("identifier", identifier).
		Str("kind", string(kind)).
		Str("source", source).
		Bool("cancelled", cancelled).
		Msg("gateway callback received")

	resp, err := h.credentials.Complete(r.Context(), kind, p, service.CompleteCredentialRequest{
		ClientIP:  clientIP(r),
		Params:    params,
		Cancelled: cancelled,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeGatewayResult(w, FromGatewayResponse(resp, p))
}
