package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/config"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// CheckoutService validates a checkout request, prepares a payment at
// the gateway and persists the resulting unpaid order.
type CheckoutService struct {
	store    application.OrderStore
	gateway  application.GatewayClient
	comgate  config.ComgateConfig
	checkout config.CheckoutConfig
	newRefID func() string
	logger   *slog.Logger
}

func NewCheckoutService(
	store application.OrderStore,
	gateway application.GatewayClient,
	comgateCfg config.ComgateConfig,
	checkoutCfg config.CheckoutConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		store:    store,
		gateway:  gateway,
		comgate:  comgateCfg,
		checkout: checkoutCfg,
		newRefID: defaultRefID(checkoutCfg.RefIDPrefix),
		logger:   logger,
	}
}

// defaultRefID yields tokens like "elora-1767091952114-1a2b3c4d".
// Uniqueness is best-effort: millisecond timestamp for ordering, a
// uuid fragment against same-millisecond collisions.
func defaultRefID(prefix string) func() string {
	return func() string {
		return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	}
}

// WithRefIDGenerator overrides refId generation. Used by tests.
func (s *CheckoutService) WithRefIDGenerator(gen func() string) *CheckoutService {
	s.newRefID = gen
	return s
}

// InitCheckout runs the full checkout-init flow: ordered validation,
// payment session creation, order persistence, return URL assembly.
func (s *CheckoutService) InitCheckout(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	if !s.comgate.Configured() {
		return nil, application.NewMissingConfigError(
			"Set ELORA_COMGATE__MERCHANT and ELORA_COMGATE__SECRET in the environment")
	}

	shipping, total, err := s.validate(cmd)
	if err != nil {
		return nil, err
	}

	refID := s.newRefID()
	priceMinor := total.MinorUnits()

	delivery := "DELIVERY"
	if shipping.IsPickup() {
		delivery = "PICKUP"
	}

	created, err := s.gateway.CreatePayment(ctx, application.CreatePaymentRequest{
		PriceMinorUnits: priceMinor,
		Currency:        s.checkout.Currency,
		Label:           s.checkout.Label,
		RefID:           refID,
		Method:          "ALL",
		Country:         shipping.Country(),
		Email:           cmd.Email,
		Phone:           cmd.Phone,
		FullName:        cmd.FullName,
		Delivery:        delivery,
		Category:        "PHYSICAL_GOODS_ONLY",
		Language:        s.checkout.Language,
	})
	if err != nil {
		// The gateway's diagnostic payload travels with the error so
		// operators can see why the create was rejected.
		s.logger.Error("gateway create payment failed", "ref_id", refID, "error", err)
		return nil, err
	}

	order, err := domain.NewOrder(
		refID,
		created.TransactionID,
		domain.Customer{FullName: cmd.FullName, Email: cmd.Email, Phone: cmd.Phone},
		shipping,
		cmd.Pickup,
		cmd.Address,
		cmd.Items,
		total,
	)
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	if err := s.store.Insert(ctx, order); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("checkout initialized",
		"ref_id", refID,
		"transaction_id", created.TransactionID,
		"shipping", shipping,
		"price_halers", priceMinor,
	)

	return &CheckoutResult{
		RefID:           refID,
		TransactionID:   created.TransactionID,
		RedirectURL:     created.RedirectURL,
		Shipping:        shipping,
		Total:           total,
		PriceMinorUnits: priceMinor,
		Pickup:          order.Pickup,
		Address:         order.Address,
		ReturnURLs:      s.returnURLs(refID),
	}, nil
}

// validate applies the checkout rules in order; the first failure wins
// and each failure carries its own user-facing reason.
func (s *CheckoutService) validate(cmd CheckoutCommand) (domain.ShippingMethod, domain.Amount, error) {
	if strings.TrimSpace(cmd.FullName) == "" {
		return "", domain.Amount{}, application.NewValidationError("fullName required")
	}
	if strings.TrimSpace(cmd.Email) == "" {
		return "", domain.Amount{}, application.NewValidationError("email required")
	}
	if cmd.Shipping == "" {
		return "", domain.Amount{}, application.NewValidationError("shipping required")
	}
	shipping, err := domain.ParseShippingMethod(cmd.Shipping)
	if err != nil {
		return "", domain.Amount{}, application.NewValidationError("invalid shipping")
	}
	if shipping.IsPickup() {
		if cmd.Pickup == nil || cmd.Pickup.PointID == "" {
			return "", domain.Amount{}, application.NewValidationError("packeta.pointId required")
		}
	} else {
		if cmd.Address == nil || !cmd.Address.Complete() {
			return "", domain.Amount{}, application.NewValidationError("address required (street, city, zip, country)")
		}
	}
	if cmd.Amount == "" {
		return "", domain.Amount{}, application.NewValidationError("amount required")
	}
	total, err := domain.ParseAmount(cmd.Amount)
	if err != nil {
		return "", domain.Amount{}, application.NewValidationError("invalid amount")
	}
	return shipping, total, nil
}

func (s *CheckoutService) returnURLs(refID string) ReturnURLs {
	base := strings.TrimRight(s.checkout.PublicBaseURL, "/")
	ref := url.QueryEscape(refID)
	return ReturnURLs{
		Paid:      fmt.Sprintf("%s%s?refId=%s", base, s.checkout.SuccessPath, ref),
		Cancelled: fmt.Sprintf("%s%s?refId=%s", base, s.checkout.CancelledPath, ref),
		Pending:   fmt.Sprintf("%s%s?refId=%s", base, s.checkout.PendingPath, ref),
	}
}
