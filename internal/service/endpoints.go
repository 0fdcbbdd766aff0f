package service

import (
	"net/url"
	"strings"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
)

// Endpoints builds the callback URLs a gateway redirects or posts back to.
type Endpoints struct {
	baseURL string
}

func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{baseURL: strings.TrimRight(baseURL, "/")}
}

// Return is where the user lands after a successful offsite step.
func (e Endpoints) Return(identifier string, kind credential.Kind) string {
	return e.build("complete", identifier, kind)
}

// Cancel is where the user lands after abandoning the offsite step.
func (e Endpoints) Cancel(identifier string, kind credential.Kind) string {
	return e.build("complete", identifier, kind) + "&cancel=1"
}

// Notify receives server-to-server notifications.
func (e Endpoints) Notify(identifier string, kind credential.Kind) string {
	return e.build("notify", identifier, kind)
}

func (e Endpoints) build(action, identifier string, kind credential.Kind) string {
	q := url.Values{}
	q.Set("kind", strings.ToLower(string(kind)))
	return e.baseURL + "/gateway/" + action + "/" + url.PathEscape(identifier) + "?" + q.Encode()
}
