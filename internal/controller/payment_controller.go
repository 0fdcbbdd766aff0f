package controller

import (
	"net/http"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/cassiomorais/payment-orchestrator/internal/service"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	payments       *service.PaymentService
	refunds        *service.RefundService
	credentials    *service.CredentialService
	defaultGateway string
}

func NewPaymentController(
	payments *service.PaymentService,
	refunds *service.RefundService,
	credentials *service.CredentialService,
	defaultGateway string,
) *PaymentController {
	return &PaymentController{
		payments:       payments,
		refunds:        refunds,
		credentials:    credentials,
		defaultGateway: defaultGateway,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Gateway == "" {
		req.Gateway = h.defaultGateway
	}

	p, err := h.payments.CreatePayment(r.Context(), service.CreatePaymentRequest{
		Gateway:           req.Gateway,
		Amount:            req.Amount,
		Currency:          req.Currency,
		CapturedReference: req.CapturedReference,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromPayment(p))
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPayment(p))
}

// ListMessages handles GET /api/v1/payments/{id}/messages
func (h *PaymentController) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	msgs, err := h.payments.ListMessages(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, FromMessage(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// RefundPayment handles POST /api/v1/payments/{id}/refund
func (h *PaymentController) RefundPayment(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req RefundPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.refunds.Refund(r.Context(), p, service.RefundRequest{
		Amount:               req.Amount,
		Receipt:              req.Receipt,
		TransactionReference: req.TransactionReference,
		Params:               req.Params,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeGatewayResult(w, FromGatewayResponse(resp, p))
}

// CreateCard handles POST /api/v1/payments/{id}/cards
func (h *PaymentController) CreateCard(w http.ResponseWriter, r *http.Request) {
	h.storeCredential(w, r, credential.KindCard)
}

// CreateCustomer handles POST /api/v1/payments/{id}/customers
func (h *PaymentController) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.storeCredential(w, r, credential.KindCustomer)
}

// UpdateCard handles PUT /api/v1/payments/{id}/cards
func (h *PaymentController) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.credentials.UpdateCard(r.Context(), p, service.CreateCredentialRequest{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeGatewayResult(w, FromGatewayResponse(resp, p))
}

// DeleteCard handles DELETE /api/v1/payments/{id}/cards
func (h *PaymentController) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp, err := h.credentials.DeleteCard(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeGatewayResult(w, FromGatewayResponse(resp, p))
}

func (h *PaymentController) storeCredential(w http.ResponseWriter, r *http.Request, kind credential.Kind) {
	id, err := paymentID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req StoreCredentialRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.payments.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.credentials.Create(r.Context(), kind, p, service.CreateCredentialRequest{
		Card:          req.Card.toCreditCard(),
		CardName:      req.CardName,
		TransactionID: req.TransactionID,
		ClientIP:      clientIP(r),
		OwnerID:       req.OwnerID,
		Params:        req.Params,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeGatewayResult(w, FromGatewayResponse(resp, p))
}
