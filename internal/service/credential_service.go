package service

import (
	"context"
	"fmt"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
)

// CreateCredentialRequest holds the caller input for tokenizing a card or customer.
type CreateCredentialRequest struct {
	Card gateway.CreditCard
	// CardName defaults to the masked card number.
	CardName string
	// TransactionID defaults to the payment identifier.
	TransactionID string
	ClientIP      string
	OwnerID       string
	Params        map[string]any
}

// CompleteCredentialRequest carries what the gateway sent back after the offsite step.
type CompleteCredentialRequest struct {
	TransactionID string
	ClientIP      string
	Params        map[string]any
	// Cancelled is set when the user abandoned the offsite step.
	Cancelled bool
}

// CredentialService tokenizes cards and customer profiles, including the
// two-phase offsite flow.
type CredentialService struct {
	payments    payment.Repository
	credentials credential.Repository
	audit       audit.Log
	gateways    GatewayResolver
	txManager   TransactionManager
	endpoints   Endpoints
	options
}

func NewCredentialService(
	payments payment.Repository,
	credentials credential.Repository,
	auditLog audit.Log,
	gateways GatewayResolver,
	txManager TransactionManager,
	endpoints Endpoints,
	opts ...Option,
) *CredentialService {
	return &CredentialService{
		payments:    payments,
		credentials: credentials,
		audit:       auditLog,
		gateways:    gateways,
		txManager:   txManager,
		endpoints:   endpoints,
		options:     buildOptions(opts),
	}
}

func (s *CredentialService) CreateCard(ctx context.Context, p *payment.Payment, req CreateCredentialRequest) (*GatewayResponse, error) {
	return s.Create(ctx, credential.KindCard, p, req)
}

func (s *CredentialService) CreateCustomer(ctx context.Context, p *payment.Payment, req CreateCredentialRequest) (*GatewayResponse, error) {
	return s.Create(ctx, credential.KindCustomer, p, req)
}

func (s *CredentialService) CompleteCreateCard(ctx context.Context, p *payment.Payment, req CompleteCredentialRequest) (*GatewayResponse, error) {
	return s.Complete(ctx, credential.KindCard, p, req)
}

func (s *CredentialService) CompleteCreateCustomer(ctx context.Context, p *payment.Payment, req CompleteCredentialRequest) (*GatewayResponse, error) {
	return s.Complete(ctx, credential.KindCustomer, p, req)
}

// UpdateCard is not supported yet.
func (s *CredentialService) UpdateCard(ctx context.Context, p *payment.Payment, req CreateCredentialRequest) (*GatewayResponse, error) {
	return nil, domainErrors.ErrNotImplemented
}

// DeleteCard is not supported yet.
func (s *CredentialService) DeleteCard(ctx context.Context, p *payment.Payment) (*GatewayResponse, error) {
	return nil, domainErrors.ErrNotImplemented
}

// Create starts tokenization on a payment in Created status. An immediate
// success stores the credential and captures the payment. A redirect stores a
// placeholder credential and authorizes the payment until Complete is called.
func (s *CredentialService) Create(ctx context.Context, kind credential.Kind, p *payment.Payment, req CreateCredentialRequest) (*GatewayResponse, error) {
	if !kind.Valid() {
		return nil, domainErrors.ErrInvalidCredentialKind
	}
	return withLock(ctx, s.locker, s.logger, p.Identifier, func() (*GatewayResponse, error) {
		return s.create(ctx, kind, p, req)
	})
}

func (s *CredentialService) create(ctx context.Context, kind credential.Kind, p *payment.Payment, req CreateCredentialRequest) (*GatewayResponse, error) {
	if p.Status != payment.StatusCreated {
		return nil, domainErrors.ErrNotEligible
	}

	gw, _, err := s.gateways.Lookup(p.Gateway)
	if err != nil {
		return nil, err
	}

	if err := ensurePersisted(ctx, s.payments, p); err != nil {
		return nil, err
	}

	name := req.CardName
	if name == "" {
		name = MaskCardNumber(req.Card.Number)
	}
	lastFour := LastFour(req.Card.Number)

	gwReq := gateway.CreateRequest{
		Card:          req.Card,
		CardName:      name,
		TransactionID: req.TransactionID,
		ClientIP:      req.ClientIP,
		ReturnURL:     s.endpoints.Return(p.Identifier, kind),
		CancelURL:     s.endpoints.Cancel(p.Identifier, kind),
		NotifyURL:     s.endpoints.Notify(p.Identifier, kind),
		Amount:        p.Money.Amount,
		Currency:      p.Money.Currency,
		Params:        req.Params,
	}
	if gwReq.TransactionID == "" {
		gwReq.TransactionID = p.Identifier
	}

	msg := audit.NewMessage(p.ID, audit.CreateRequest(string(kind)), "", createPayload(gwReq))
	msg.SuccessURL = gwReq.ReturnURL
	msg.FailureURL = gwReq.CancelURL
	if err := s.audit.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("append create request: %w", err)
	}

	logger := s.logger.With().
		Str("payment_id", p.ID.String()).
		Str("gateway", gw.Name()).
		Str("kind", string(kind)).
		Logger()

	var raw gateway.Response
	if kind == credential.KindCard {
		raw, err = gw.CreateCard(ctx, gwReq)
	} else {
		raw, err = gw.CreateCustomer(ctx, gwReq)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("create credential gateway call failed")
		s.recordCredential(kind, "error")
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeGatewayErrorMessage, "", errorPayload(err))); err != nil {
			return nil, fmt.Errorf("append gateway error: %w", err)
		}
		return failedResponse(err), nil
	}

	resp := newGatewayResponse(raw)
	switch {
	case raw.IsSuccessful():
		token := tokenFor(kind, raw)
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CreateResponse(string(kind)), raw.TransactionReference(), raw.Data())); err != nil {
			return nil, fmt.Errorf("append create response: %w", err)
		}

		cred := credential.New(kind, name, lastFour, req.OwnerID)
		cred.SetReference(token)
		if err := s.store(ctx, p, cred, payment.StatusCaptured); err != nil {
			return nil, err
		}

		resp.Redirect = false
		resp.Message = string(kind) + " created successfully"
		logger.Info().Str("credential_id", cred.ID.String()).Msg("credential stored")
		s.recordCredential(kind, "success")
		s.hooks.fireCredentialStored(ctx, p, cred)

	case raw.IsRedirect():
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CreateRedirectResponse(string(kind)), "", raw.Data())); err != nil {
			return nil, fmt.Errorf("append redirect response: %w", err)
		}

		placeholder := credential.New(kind, name, lastFour, req.OwnerID)
		if err := s.store(ctx, p, placeholder, payment.StatusAuthorized); err != nil {
			return nil, err
		}

		resp.RedirectURL = raw.RedirectURL()
		resp.Message = "Redirecting to gateway"
		logger.Info().Str("credential_id", placeholder.ID.String()).Msg("credential pending offsite step")
		s.recordCredential(kind, "redirect")

	default:
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CreateError(string(kind)), "", raw.Data())); err != nil {
			return nil, fmt.Errorf("append create error: %w", err)
		}
		resp.Message = errorMessage(raw)
		logger.Info().Str("code", raw.Code()).Msg("create credential declined")
		s.recordCredential(kind, "declined")
	}

	return resp, nil
}

// Complete finalizes an offsite tokenization on an Authorized payment. On
// failure the placeholder credential is removed and the payment stays
// Authorized without a credential.
func (s *CredentialService) Complete(ctx context.Context, kind credential.Kind, p *payment.Payment, req CompleteCredentialRequest) (*GatewayResponse, error) {
	if !kind.Valid() {
		return nil, domainErrors.ErrInvalidCredentialKind
	}
	return withLock(ctx, s.locker, s.logger, p.Identifier, func() (*GatewayResponse, error) {
		return s.complete(ctx, kind, p, req)
	})
}

func (s *CredentialService) complete(ctx context.Context, kind credential.Kind, p *payment.Payment, req CompleteCredentialRequest) (*GatewayResponse, error) {
	if p.Status != payment.StatusAuthorized {
		return nil, domainErrors.ErrNotEligible
	}
	if p.CredentialID == nil {
		return nil, domainErrors.ErrCredentialNotFound
	}
	cred, err := s.credentials.GetByID(ctx, *p.CredentialID)
	if err != nil {
		return nil, err
	}

	if req.Cancelled {
		return s.cancel(ctx, kind, p, cred, req)
	}

	gw, completer, err := s.gateways.Lookup(p.Gateway)
	if err != nil {
		return nil, err
	}

	gwReq := gateway.CompleteRequest{
		TransactionID: req.TransactionID,
		ClientIP:      req.ClientIP,
		Amount:        p.Money.Amount,
		Currency:      p.Money.Currency,
		Params:        req.Params,
	}
	if gwReq.TransactionID == "" {
		gwReq.TransactionID = p.Identifier
	}
	s.hooks.fireBeforeCompleteCreate(ctx, kind, p, &gwReq)

	if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CompleteCreateRequest(string(kind)), "", completePayload(gwReq))); err != nil {
		return nil, fmt.Errorf("append complete request: %w", err)
	}

	logger := s.logger.With().
		Str("payment_id", p.ID.String()).
		Str("gateway", gw.Name()).
		Str("kind", string(kind)).
		Logger()

	raw, err := s.dispatchComplete(ctx, kind, p, cred, gw, completer, gwReq)
	if err != nil {
		logger.Warn().Err(err).Msg("complete credential gateway call failed")
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.TypeGatewayErrorMessage, "", errorPayload(err))); err != nil {
			return nil, fmt.Errorf("append gateway error: %w", err)
		}
		if err := s.rollback(ctx, p, cred); err != nil {
			return nil, err
		}
		s.recordCredential(kind, "error")
		return failedResponse(err), nil
	}

	resp := newGatewayResponse(raw)
	if !raw.IsSuccessful() {
		if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CompleteCreateError(string(kind)), "", raw.Data())); err != nil {
			return nil, fmt.Errorf("append complete error: %w", err)
		}
		if err := s.rollback(ctx, p, cred); err != nil {
			return nil, err
		}
		resp.Redirect = false
		resp.Message = errorMessage(raw)
		logger.Info().Str("code", raw.Code()).Msg("complete credential declined")
		s.recordCredential(kind, "declined")
		return resp, nil
	}

	// The audit reference is the gateway transaction; the token stays in the payload.
	token := tokenFor(kind, raw)
	if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CompleteCreateResponse(string(kind)), raw.TransactionReference(), raw.Data())); err != nil {
		return nil, fmt.Errorf("append complete response: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		cred.SetReference(token)
		if err := s.credentials.Update(txCtx, cred); err != nil {
			return err
		}
		if err := p.TransitionTo(payment.StatusCaptured); err != nil {
			return err
		}
		return s.payments.Update(txCtx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("store completed credential: %w", err)
	}

	resp.Message = string(kind) + " created successfully"
	logger.Info().Str("credential_id", cred.ID.String()).Msg("credential completed")
	s.recordCredential(kind, "success")
	s.hooks.fireCredentialStored(ctx, p, cred)
	return resp, nil
}

// cancel rolls back an abandoned offsite step without contacting the gateway.
func (s *CredentialService) cancel(ctx context.Context, kind credential.Kind, p *payment.Payment, cred *credential.Credential, req CompleteCredentialRequest) (*GatewayResponse, error) {
	payload := map[string]any{"cancelled": true}
	if len(req.Params) > 0 {
		payload["params"] = req.Params
	}
	if err := s.audit.Append(ctx, audit.NewMessage(p.ID, audit.CompleteCreateError(string(kind)), "", payload)); err != nil {
		return nil, fmt.Errorf("append complete error: %w", err)
	}
	if err := s.rollback(ctx, p, cred); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("kind", string(kind)).
		Msg("offsite step cancelled")
	s.recordCredential(kind, "cancelled")
	return &GatewayResponse{Message: "Offsite step cancelled"}, nil
}

// dispatchComplete uses the gateway's completion step when it has one and
// re-issues the create call otherwise.
func (s *CredentialService) dispatchComplete(
	ctx context.Context,
	kind credential.Kind,
	p *payment.Payment,
	cred *credential.Credential,
	gw gateway.Gateway,
	completer gateway.Completer,
	req gateway.CompleteRequest,
) (gateway.Response, error) {
	if completer != nil {
		if kind == credential.KindCard {
			return completer.CompleteCreateCard(ctx, req)
		}
		return completer.CompleteCreateCustomer(ctx, req)
	}

	createReq := gateway.CreateRequest{
		CardName:      cred.DisplayName,
		TransactionID: req.TransactionID,
		ClientIP:      req.ClientIP,
		ReturnURL:     s.endpoints.Return(p.Identifier, kind),
		CancelURL:     s.endpoints.Cancel(p.Identifier, kind),
		NotifyURL:     s.endpoints.Notify(p.Identifier, kind),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Params:        req.Params,
	}
	if kind == credential.KindCard {
		return gw.CreateCard(ctx, createReq)
	}
	return gw.CreateCustomer(ctx, createReq)
}

// store persists a new credential, links it and moves the payment to status.
func (s *CredentialService) store(ctx context.Context, p *payment.Payment, cred *credential.Credential, status payment.PaymentStatus) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.credentials.Create(txCtx, cred); err != nil {
			return err
		}
		p.LinkCredential(cred.ID)
		if err := p.TransitionTo(status); err != nil {
			return err
		}
		return s.payments.Update(txCtx, p)
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// rollback drops the placeholder credential and unlinks it from the payment.
func (s *CredentialService) rollback(ctx context.Context, p *payment.Payment, cred *credential.Credential) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.credentials.Delete(txCtx, cred.ID); err != nil {
			return err
		}
		p.UnlinkCredential()
		return s.payments.Update(txCtx, p)
	})
	if err != nil {
		return fmt.Errorf("rollback credential: %w", err)
	}
	return nil
}

func (s *CredentialService) recordCredential(kind credential.Kind, outcome string) {
	if s.metrics != nil {
		s.metrics.CredentialsTotal.WithLabelValues(string(kind), outcome).Inc()
	}
}

func tokenFor(kind credential.Kind, raw gateway.Response) string {
	if kind == credential.KindCustomer {
		return raw.CustomerToken()
	}
	return raw.CardReference()
}

func createPayload(req gateway.CreateRequest) map[string]any {
	payload := map[string]any{
		"card_name":      req.CardName,
		"transaction_id": req.TransactionID,
		"client_ip":      req.ClientIP,
		"return_url":     req.ReturnURL,
		"cancel_url":     req.CancelURL,
		"notify_url":     req.NotifyURL,
		"amount":         req.Amount.String(),
		"currency":       req.Currency,
	}
	if len(req.Params) > 0 {
		payload["params"] = req.Params
	}
	return payload
}

func completePayload(req gateway.CompleteRequest) map[string]any {
	payload := map[string]any{
		"transaction_id": req.TransactionID,
		"client_ip":      req.ClientIP,
		"amount":         req.Amount.String(),
		"currency":       req.Currency,
	}
	if len(req.Params) > 0 {
		payload["params"] = req.Params
	}
	return payload
}
