package services

import (
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// CheckoutCommand is the normalized checkout request. The HTTP layer
// collapses the payload's field drift (several accepted amount field
// names, JSON or form bodies) into this one shape before any logic
// sees it. Amount is the raw textual value; validation parses it.
type CheckoutCommand struct {
	FullName string
	Email    string
	Phone    string
	Shipping string
	Amount   string
	Pickup   *domain.PickupPoint
	Address  *domain.HomeAddress
	Items    []domain.LineItem
}

// Notification is a gateway callback payload. All fields are optional
// and none of them are trusted: Status is diagnostic only, the live
// status query governs every transition.
type Notification struct {
	RefID         string
	TransactionID string
	Status        string
}

// ReturnURLs are the storefront landing pages for the three terminal
// redirect outcomes. Cancelled and pending default to the same page.
type ReturnURLs struct {
	Paid      string `json:"paid"`
	Cancelled string `json:"cancelled"`
	Pending   string `json:"pending"`
}

// CheckoutResult is what a successful checkout init returns to the
// storefront.
type CheckoutResult struct {
	RefID           string
	TransactionID   string
	RedirectURL     string
	Shipping        domain.ShippingMethod
	Total           domain.Amount
	PriceMinorUnits int64
	Pickup          *domain.PickupPoint
	Address         *domain.HomeAddress
	ReturnURLs      ReturnURLs
}
