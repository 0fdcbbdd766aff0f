package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/cassiomorais/payment-orchestrator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingPayment returns an Authorized payment linked to a placeholder credential.
func pendingPayment(f *apiFixture, kind credential.Kind) *payment.Payment {
	p := testutil.NewTestPayment("stub", "10", "USD", payment.StatusAuthorized)
	cred := credential.New(kind, "**** 1111", "1111", "")
	f.credentials.AddCredential(cred)
	p.LinkCredential(cred.ID)
	f.payments.AddPayment(p)
	return p
}

func TestGatewayController_Complete(t *testing.T) {
	f := newAPIFixture(t)
	f.completer.CompleteCreateCardFunc = func(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error) {
		return &gateway.Result{Successful: true, CardRef: "card_tok"}, nil
	}
	p := pendingPayment(f, credential.KindCard)

	form := url.Values{"PaRes": {"signed"}}
	req := httptest.NewRequest(http.MethodPost, "/gateway/complete/"+p.Identifier+"?kind=card", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeBody[GatewayResultResponse](t, w)
	assert.True(t, result.Successful)
	assert.Equal(t, string(payment.StatusCaptured), result.Payment.Status)

	require.Len(t, f.completer.Requests, 1)
	sent := f.completer.Requests[0]
	assert.Equal(t, p.Identifier, sent.TransactionID)
	assert.Equal(t, "192.0.2.1", sent.ClientIP)
	assert.Equal(t, "signed", sent.Params["PaRes"])
	assert.NotContains(t, sent.Params, "kind")

	cred := f.credentials.Get(*p.CredentialID)
	require.NotNil(t, cred)
	require.NotNil(t, cred.Reference)
	assert.Equal(t, "card_tok", *cred.Reference)
}

func TestGatewayController_NotifyFailureRollsBack(t *testing.T) {
	f := newAPIFixture(t)
	f.completer.CompleteCreateCustomerFunc = func(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error) {
		return &gateway.Result{ErrorCode: "05", Text: "do not honor"}, nil
	}
	p := pendingPayment(f, credential.KindCustomer)

	w := f.do(t, http.MethodPost, "/gateway/notify/"+p.Identifier+"?kind=customer", nil)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	result := decodeBody[GatewayResultResponse](t, w)
	assert.False(t, result.Successful)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, string(payment.StatusAuthorized), result.Payment.Status)
	assert.Nil(t, result.Payment.CredentialID)
	assert.Zero(t, f.credentials.Len())
}

func TestGatewayController_Errors(t *testing.T) {
	f := newAPIFixture(t)
	captured := testutil.NewCapturedPayment("stub", "10", "USD")
	f.payments.AddPayment(captured)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing kind", "/gateway/complete/" + captured.Identifier, http.StatusBadRequest},
		{"bad kind", "/gateway/complete/" + captured.Identifier + "?kind=wallet", http.StatusBadRequest},
		{"unknown identifier", "/gateway/complete/nope?kind=card", http.StatusNotFound},
		{"not awaiting completion", "/gateway/complete/" + captured.Identifier + "?kind=card", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, f.completer.Requests)
}

func TestGatewayController_CancelSkipsGateway(t *testing.T) {
	f := newAPIFixture(t)
	p := pendingPayment(f, credential.KindCard)

	w := f.do(t, http.MethodGet, "/gateway/complete/"+p.Identifier+"?kind=card&cancel=1", nil)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	result := decodeBody[GatewayResultResponse](t, w)
	assert.False(t, result.Successful)
	assert.Equal(t, "Offsite step cancelled", result.Message)
	assert.Equal(t, string(payment.StatusAuthorized), result.Payment.Status)
	assert.Nil(t, result.Payment.CredentialID)
	assert.Empty(t, f.completer.Requests)
	assert.Zero(t, f.credentials.Len())
}
