package service

import (
	"testing"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	"github.com/stretchr/testify/assert"
)

func TestEndpoints(t *testing.T) {
	e := NewEndpoints("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080/gateway/complete/abc?kind=customer", e.Return("abc", credential.KindCustomer))
	assert.Equal(t, "http://localhost:8080/gateway/complete/abc?kind=card&cancel=1", e.Cancel("abc", credential.KindCard))
	assert.Equal(t, "http://localhost:8080/gateway/notify/a%2Fb?kind=card", e.Notify("a/b", credential.KindCard))
}
