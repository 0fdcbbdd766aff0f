package controller

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"slices"

	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

var validate = validator.New()

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrCredentialNotFound, http.StatusNotFound, "credential_not_found"},
	{domainErrors.ErrNotEligible, http.StatusConflict, "not_eligible"},
	{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
	{domainErrors.ErrDuplicateIdentifier, http.StatusConflict, "duplicate_identifier"},
	{domainErrors.ErrLockAcquisitionFailed, http.StatusConflict, "payment_busy"},
	{domainErrors.ErrInvalidCredentialKind, http.StatusBadRequest, "invalid_kind"},
	{domainErrors.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domainErrors.ErrInvalidCurrency, http.StatusBadRequest, "invalid_currency"},
	{domainErrors.ErrGatewayNotFound, http.StatusUnprocessableEntity, "unknown_gateway"},
	{domainErrors.ErrNotImplemented, http.StatusNotImplemented, "not_implemented"},
	{domainErrors.ErrGatewayUnavailable, http.StatusServiceUnavailable, "gateway_unavailable"},
	{gobreaker.ErrOpenState, http.StatusServiceUnavailable, "gateway_unavailable"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

// writeGatewayResult maps the orchestrator outcome onto a status code:
// 200 when the gateway accepted, 202 when the user must be redirected and
// 422 when the gateway declined or failed.
func writeGatewayResult(w http.ResponseWriter, resp *GatewayResultResponse) {
	status := http.StatusUnprocessableEntity
	switch {
	case resp.Successful:
		status = http.StatusOK
	case resp.Redirect:
		status = http.StatusAccepted
	}
	writeJSON(w, status, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}

func paymentID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domainErrors.NewValidationError("id", "invalid payment id")
	}
	return id, nil
}

// clientIP returns the caller address without the port. RealIP may already
// have replaced RemoteAddr with a bare address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestParams flattens query and form values. Single values are stored as
// strings, repeated ones as slices.
func requestParams(r *http.Request, skip ...string) map[string]any {
	params := make(map[string]any)
	if err := r.ParseForm(); err != nil {
		return params
	}
	for key, values := range r.Form {
		if slices.Contains(skip, key) || len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			params[key] = values[0]
		} else {
			params[key] = values
		}
	}
	return params
}

