package service

import (
	"fmt"
	"strings"

	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
)

// GatewayResponse is the normalized result of an orchestrated gateway call.
// Declines and gateway errors both come back as Successful=false with a Message.
type GatewayResponse struct {
	Successful  bool
	Redirect    bool
	Message     string
	RedirectURL string
	Raw         gateway.Response
}

func (r *GatewayResponse) IsSuccessful() bool { return r.Successful }

func (r *GatewayResponse) IsRedirect() bool { return r.Redirect }

func newGatewayResponse(raw gateway.Response) *GatewayResponse {
	return &GatewayResponse{
		Successful: raw.IsSuccessful(),
		Redirect:   raw.IsRedirect(),
		Raw:        raw,
	}
}

// failedResponse reports a gateway error. The message is never empty.
func failedResponse(err error) *GatewayResponse {
	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		msg = "Gateway error"
	}
	return &GatewayResponse{Message: msg}
}

func errorMessage(raw gateway.Response) string {
	return fmt.Sprintf("Error (%s): %s", raw.Code(), raw.Message())
}
