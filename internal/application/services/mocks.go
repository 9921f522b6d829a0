package services

import (
	"context"
	"sync"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// MockGatewayClient
type MockGatewayClient struct {
	mu sync.Mutex

	CreatePaymentFn func(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResponse, error)
	GetStatusFn     func(ctx context.Context, transactionID string) (*application.PaymentState, error)

	CreatePaymentCalls []application.CreatePaymentRequest
	GetStatusCalls     []string
}

func NewMockGatewayClient() *MockGatewayClient {
	return &MockGatewayClient{}
}

func (m *MockGatewayClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResponse, error) {
	m.mu.Lock()
	m.CreatePaymentCalls = append(m.CreatePaymentCalls, req)
	m.mu.Unlock()
	if m.CreatePaymentFn != nil {
		return m.CreatePaymentFn(ctx, req)
	}
	return &application.CreatePaymentResponse{
		TransactionID: "TRANS-" + req.RefID,
		RedirectURL:   "https://payments.comgate.cz/client/instructions/index?id=TRANS-" + req.RefID,
		Fields:        map[string]string{"code": "0", "message": "OK"},
	}, nil
}

func (m *MockGatewayClient) GetStatus(ctx context.Context, transactionID string) (*application.PaymentState, error) {
	m.mu.Lock()
	m.GetStatusCalls = append(m.GetStatusCalls, transactionID)
	m.mu.Unlock()
	if m.GetStatusFn != nil {
		return m.GetStatusFn(ctx, transactionID)
	}
	return &application.PaymentState{Status: "PENDING"}, nil
}

// MockNotifier
type MockNotifier struct {
	mu sync.Mutex

	NotifyOwnerFn    func(ctx context.Context, order *domain.Order) error
	NotifyCustomerFn func(ctx context.Context, order *domain.Order) error

	OwnerCalls    []*domain.Order
	CustomerCalls []*domain.Order
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyOwner(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	m.OwnerCalls = append(m.OwnerCalls, order)
	m.mu.Unlock()
	if m.NotifyOwnerFn != nil {
		return m.NotifyOwnerFn(ctx, order)
	}
	return nil
}

func (m *MockNotifier) NotifyCustomer(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	m.CustomerCalls = append(m.CustomerCalls, order)
	m.mu.Unlock()
	if m.NotifyCustomerFn != nil {
		return m.NotifyCustomerFn(ctx, order)
	}
	return nil
}

// OwnerCallCount reports how many owner notifications were attempted.
func (m *MockNotifier) OwnerCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.OwnerCalls)
}

// CustomerCallCount reports how many customer confirmations were attempted.
func (m *MockNotifier) CustomerCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CustomerCalls)
}
