package application

import (
	"context"
	"errors"

	"github.com/elorajewelry/checkout-service/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// CreatePaymentRequest carries everything the gateway needs to prepare
// a payment session. The price is in minor units (haléře).
type CreatePaymentRequest struct {
	PriceMinorUnits int64
	Currency        string
	Label           string
	RefID           string
	Method          string
	Country         string
	Email           string
	Phone           string
	FullName        string
	Delivery        string
	Category        string
	Language        string
}

type CreatePaymentResponse struct {
	TransactionID string
	RedirectURL   string
	Fields        map[string]string
}

// PaymentState is the decoded result of a live status query. Status is
// normalized to uppercase before comparison.
type PaymentState struct {
	Status string
	Fields map[string]string
}

// Completed reports whether the gateway considers the payment settled.
// Exactly PAID and AUTHORIZED count; everything else, including
// PENDING, CANCELLED, and unknown values, does not.
func (s *PaymentState) Completed() bool {
	switch s.Status {
	case "PAID", "AUTHORIZED":
		return true
	}
	return false
}

// GatewayClient is the port for the external payment gateway.
type GatewayClient interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	GetStatus(ctx context.Context, transactionID string) (*PaymentState, error)
}

// OrderStore is the port for order persistence. MarkPaid reports
// whether this call performed the unpaid->paid transition; it returns
// false both for an already-paid order and for an unknown refID. That
// return value is what guarantees single-fire side effects.
type OrderStore interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByRef(ctx context.Context, refID string) (*domain.Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, refID string) (bool, error)
}

// Notifier delivers order confirmation emails. Failures are the
// caller's to log, never to propagate.
type Notifier interface {
	NotifyOwner(ctx context.Context, order *domain.Order) error
	NotifyCustomer(ctx context.Context, order *domain.Order) error
}
