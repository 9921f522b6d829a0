package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// ReconcileService resolves an untrusted gateway notification to a
// locally known order, confirms true payment state through a live
// status query and performs the unpaid->paid transition at most once.
//
// It runs detached from the HTTP request that delivered the
// notification: the caller has already acknowledged the gateway, so
// every failure here terminates this unit of work with a log line and
// nothing else.
type ReconcileService struct {
	store    application.OrderStore
	gateway  application.GatewayClient
	notifier application.Notifier
	logger   *slog.Logger
}

func NewReconcileService(
	store application.OrderStore,
	gateway application.GatewayClient,
	notifier application.Notifier,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

// Reconcile processes one notification to completion.
func (s *ReconcileService) Reconcile(ctx context.Context, n Notification) {
	order := s.resolveOrder(ctx, n)

	// Prefer the transaction id the gateway sent; fall back to the one
	// recorded at checkout time.
	transactionID := n.TransactionID
	if transactionID == "" && order != nil {
		transactionID = order.TransactionID
	}
	if transactionID == "" {
		// Nothing to check, nothing to do. Not an error: the gateway
		// will retry with a fuller payload if the payment matters.
		s.logger.Debug("notification carries no usable transaction id", "ref_id", n.RefID)
		return
	}

	state, err := s.gateway.GetStatus(ctx, transactionID)
	if err != nil {
		s.logger.Error("status query failed",
			"transaction_id", transactionID,
			"error", err,
		)
		return
	}

	if !state.Completed() {
		// Intermediate event; a later callback will carry the final
		// status. The payload's own claimed status is irrelevant here.
		s.logger.Info("payment not completed, ignoring notification",
			"transaction_id", transactionID,
			"status", state.Status,
			"claimed_status", n.Status,
		)
		return
	}

	if order == nil {
		// Money moved with no matching local order. Operationally
		// significant, must stay observable.
		s.logger.Error("paid transaction has no matching local order",
			"transaction_id", transactionID,
			"ref_id", n.RefID,
			"status", state.Status,
		)
		return
	}

	performed, err := s.store.MarkPaid(ctx, order.RefID)
	if err != nil {
		s.logger.Error("failed to mark order paid", "ref_id", order.RefID, "error", err)
		return
	}
	if !performed {
		// Duplicate or concurrent delivery lost the race; the winner
		// already sent the emails.
		s.logger.Info("order already settled, suppressing side effects", "ref_id", order.RefID)
		return
	}

	order.Paid = true
	s.logger.Info("order settled",
		"ref_id", order.RefID,
		"transaction_id", transactionID,
		"status", state.Status,
	)

	// Both sends are independent: one failing must not block the other
	// and never reverts the paid transition.
	if err := s.notifier.NotifyOwner(ctx, order); err != nil {
		s.logger.Error("failed to send owner notification", "ref_id", order.RefID, "error", err)
	}
	if err := s.notifier.NotifyCustomer(ctx, order); err != nil {
		s.logger.Error("failed to send customer confirmation", "ref_id", order.RefID, "error", err)
	}
}

// resolveOrder tries the direct refId lookup first, then the
// transaction-id secondary index for callbacks that omit refId.
func (s *ReconcileService) resolveOrder(ctx context.Context, n Notification) *domain.Order {
	if n.RefID != "" {
		order, err := s.store.GetByRef(ctx, n.RefID)
		if err == nil {
			return order
		}
		if !errors.Is(err, application.ErrOrderNotFound) {
			s.logger.Error("order lookup failed", "ref_id", n.RefID, "error", err)
			return nil
		}
	}

	if n.TransactionID != "" {
		order, err := s.store.GetByTransactionID(ctx, n.TransactionID)
		if err == nil {
			return order
		}
		if !errors.Is(err, application.ErrOrderNotFound) {
			s.logger.Error("order lookup failed", "transaction_id", n.TransactionID, "error", err)
		}
	}

	return nil
}
