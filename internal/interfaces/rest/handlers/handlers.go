// Package handlers maps HTTP requests to core operations and results
// back to the storefront's response shapes.
package handlers

import (
	"log/slog"

	"github.com/elorajewelry/checkout-service/internal/application/services"
	"github.com/elorajewelry/checkout-service/internal/worker"
)

type Handlers struct {
	checkoutService *services.CheckoutService
	reconciler      *services.ReconcileService
	dispatcher      *worker.Dispatcher
	logger          *slog.Logger
}

func NewHandlers(
	checkoutService *services.CheckoutService,
	reconciler *services.ReconcileService,
	dispatcher *worker.Dispatcher,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		checkoutService: checkoutService,
		reconciler:      reconciler,
		dispatcher:      dispatcher,
		logger:          logger,
	}
}
