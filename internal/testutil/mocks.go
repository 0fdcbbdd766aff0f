package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/cassiomorais/payment-orchestrator/internal/domain/audit"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/credential"
	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/cassiomorais/payment-orchestrator/internal/domain/payment"
	"github.com/cassiomorais/payment-orchestrator/internal/gateway"
	"github.com/google/uuid"
)

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu           sync.Mutex
	payments     map[uuid.UUID]*payment.Payment
	byIdentifier map[string]*payment.Payment

	CreateCalls int
	UpdateCalls int

	CreateFunc          func(ctx context.Context, p *payment.Payment) error
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	GetByIdentifierFunc func(ctx context.Context, identifier string) (*payment.Payment, error)
	UpdateFunc          func(ctx context.Context, p *payment.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments:     make(map[uuid.UUID]*payment.Payment),
		byIdentifier: make(map[string]*payment.Payment),
	}
}

// AddPayment pre-populates the mock with a payment.
func (m *MockPaymentRepository) AddPayment(p *payment.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	m.byIdentifier[p.Identifier] = p
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.AddPayment(p)
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) GetByIdentifier(ctx context.Context, identifier string) (*payment.Payment, error) {
	if m.GetByIdentifierFunc != nil {
		return m.GetByIdentifierFunc(ctx, identifier)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byIdentifier[identifier]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	m.AddPayment(p)
	return nil
}

// --- Audit Log Mock ---

// MockAuditLog is an in-memory audit.Log.
type MockAuditLog struct {
	mu       sync.Mutex
	messages map[uuid.UUID][]*audit.Message

	AppendFunc             func(ctx context.Context, msg *audit.Message) error
	FirstWithReferenceFunc func(ctx context.Context, paymentID uuid.UUID) (*audit.Message, error)
}

func NewMockAuditLog() *MockAuditLog {
	return &MockAuditLog{messages: make(map[uuid.UUID][]*audit.Message)}
}

func (m *MockAuditLog) Append(ctx context.Context, msg *audit.Message) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.PaymentID] = append(m.messages[msg.PaymentID], msg)
	return nil
}

func (m *MockAuditLog) FirstWithReference(ctx context.Context, paymentID uuid.UUID) (*audit.Message, error) {
	if m.FirstWithReferenceFunc != nil {
		return m.FirstWithReferenceFunc(ctx, paymentID)
	}
	msgs, _ := m.List(ctx, paymentID)
	for _, msg := range msgs {
		if msg.Reference != nil {
			return msg, nil
		}
	}
	return nil, nil
}

func (m *MockAuditLog) List(ctx context.Context, paymentID uuid.UUID) ([]*audit.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append([]*audit.Message(nil), m.messages[paymentID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

// Types returns the message types of a payment in append order.
func (m *MockAuditLog) Types(paymentID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.messages[paymentID]))
	for _, msg := range m.messages[paymentID] {
		types = append(types, msg.Type)
	}
	return types
}

// Count returns the number of messages across all payments.
func (m *MockAuditLog) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msgs := range m.messages {
		n += len(msgs)
	}
	return n
}

// --- Credential Repository Mock ---

// MockCredentialRepository is a mock implementation of credential.Repository.
type MockCredentialRepository struct {
	mu          sync.Mutex
	credentials map[uuid.UUID]*credential.Credential

	CreateFunc func(ctx context.Context, c *credential.Credential) error
	UpdateFunc func(ctx context.Context, c *credential.Credential) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{credentials: make(map[uuid.UUID]*credential.Credential)}
}

// AddCredential pre-populates the mock with a credential.
func (m *MockCredentialRepository) AddCredential(c *credential.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials[c.ID] = c
}

// Get returns a stored credential or nil.
func (m *MockCredentialRepository) Get(id uuid.UUID) *credential.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credentials[id]
}

// Len returns the number of stored credentials.
func (m *MockCredentialRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.credentials)
}

func (m *MockCredentialRepository) Create(ctx context.Context, c *credential.Credential) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	m.AddCredential(c)
	return nil
}

func (m *MockCredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*credential.Credential, error) {
	if c := m.Get(id); c != nil {
		return c, nil
	}
	return nil, domainErrors.ErrCredentialNotFound
}

func (m *MockCredentialRepository) Update(ctx context.Context, c *credential.Credential) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	m.AddCredential(c)
	return nil
}

func (m *MockCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.credentials, id)
	return nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Gateway Stubs ---

// StubGateway is a gateway.Gateway driven by function fields. Unset
// operations succeed with an empty result. Requests are recorded.
type StubGateway struct {
	mu   sync.Mutex
	name string

	RefundRequests []gateway.RefundRequest
	CreateRequests []gateway.CreateRequest

	RefundFunc         func(ctx context.Context, req gateway.RefundRequest) (gateway.Response, error)
	CreateCardFunc     func(ctx context.Context, req gateway.CreateRequest) (gateway.Response, error)
	CreateCustomerFunc func(ctx context.Context, req gateway.CreateRequest) (gateway.Response, error)
}

func NewStubGateway(name string) *StubGateway {
	return &StubGateway{name: name}
}

func (g *StubGateway) Name() string { return g.name }

func (g *StubGateway) Refund(ctx context.Context, req gateway.RefundRequest) (gateway.Response, error) {
	g.mu.Lock()
	g.RefundRequests = append(g.RefundRequests, req)
	g.mu.Unlock()
	if g.RefundFunc != nil {
		return g.RefundFunc(ctx, req)
	}
	return &gateway.Result{Successful: true}, nil
}

func (g *StubGateway) CreateCard(ctx context.Context, req gateway.CreateRequest) (gateway.Response, error) {
	g.mu.Lock()
	g.CreateRequests = append(g.CreateRequests, req)
	g.mu.Unlock()
	if g.CreateCardFunc != nil {
		return g.CreateCardFunc(ctx, req)
	}
	return &gateway.Result{Successful: true}, nil
}

func (g *StubGateway) CreateCustomer(ctx context.Context, req gateway.CreateRequest) (gateway.Response, error) {
	g.mu.Lock()
	g.CreateRequests = append(g.CreateRequests, req)
	g.mu.Unlock()
	if g.CreateCustomerFunc != nil {
		return g.CreateCustomerFunc(ctx, req)
	}
	return &gateway.Result{Successful: true}, nil
}

// StubCompleter is a gateway.Completer driven by function fields.
type StubCompleter struct {
	mu       sync.Mutex
	Requests []gateway.CompleteRequest

	CompleteCreateCardFunc     func(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error)
	CompleteCreateCustomerFunc func(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error)
}

func (c *StubCompleter) CompleteCreateCard(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, req)
	c.mu.Unlock()
	if c.CompleteCreateCardFunc != nil {
		return c.CompleteCreateCardFunc(ctx, req)
	}
	return &gateway.Result{Successful: true}, nil
}

func (c *StubCompleter) CompleteCreateCustomer(ctx context.Context, req gateway.CompleteRequest) (gateway.Response, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, req)
	c.mu.Unlock()
	if c.CompleteCreateCustomerFunc != nil {
		return c.CompleteCreateCustomerFunc(ctx, req)
	}
	return &gateway.Result{Successful: true}, nil
}

// MockResolver resolves gateways from a fixed map.
type MockResolver struct {
	gateways   map[string]gateway.Gateway
	completers map[string]gateway.Completer
}

func NewMockResolver() *MockResolver {
	return &MockResolver{
		gateways:   make(map[string]gateway.Gateway),
		completers: make(map[string]gateway.Completer),
	}
}

// Add registers gw. A nil completer means the gateway has no completion step.
func (r *MockResolver) Add(gw gateway.Gateway, completer gateway.Completer) *MockResolver {
	r.gateways[gw.Name()] = gw
	if completer != nil {
		r.completers[gw.Name()] = completer
	}
	return r
}

func (r *MockResolver) Lookup(name string) (gateway.Gateway, gateway.Completer, error) {
	gw, ok := r.gateways[name]
	if !ok {
		return nil, nil, domainErrors.ErrGatewayNotFound
	}
	return gw, r.completers[name], nil
}

// --- Locker Mock ---

// MockLocker records lock keys and can fail acquisition.
type MockLocker struct {
	mu        sync.Mutex
	Keys      []string
	Released  int
	LockErr   error
	UnlockErr error
}

func (l *MockLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LockErr != nil {
		return nil, l.LockErr
	}
	l.Keys = append(l.Keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.Released++
		return l.UnlockErr
	}, nil
}
