// Package domain encodes the order entity and its attributes
package domain

import (
	"errors"
	"time"
)

// ShippingMethod identifies how an order is delivered to the customer.
type ShippingMethod string

const (
	ShippingPickupCZ ShippingMethod = "cz_pickup"
	ShippingHomeCZ   ShippingMethod = "cz_home"
	ShippingPickupSK ShippingMethod = "sk_pickup"
	ShippingHomeSK   ShippingMethod = "sk_home"
)

var ErrUnknownShippingMethod = errors.New("unknown shipping method")

func ParseShippingMethod(s string) (ShippingMethod, error) {
	switch ShippingMethod(s) {
	case ShippingPickupCZ, ShippingHomeCZ, ShippingPickupSK, ShippingHomeSK:
		return ShippingMethod(s), nil
	}
	return "", ErrUnknownShippingMethod
}

// IsPickup reports whether the method delivers to a pickup point
// rather than a home address.
func (m ShippingMethod) IsPickup() bool {
	return m == ShippingPickupCZ || m == ShippingPickupSK
}

// Country returns the ISO country code the method ships to.
func (m ShippingMethod) Country() string {
	switch m {
	case ShippingPickupSK, ShippingHomeSK:
		return "SK"
	default:
		return "CZ"
	}
}

// PickupPoint is a Packeta pickup location chosen by the customer.
type PickupPoint struct {
	PointID string
	Name    string
	Address string
}

// HomeAddress is a full delivery address. All four fields are mandatory.
type HomeAddress struct {
	Street  string
	City    string
	Zip     string
	Country string
}

func (a HomeAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.Zip != "" && a.Country != ""
}

// LineItem is one position of the order. Items degrade display only,
// they never gate payment.
type LineItem struct {
	Name      string
	Variant   string
	Quantity  int
	LineTotal Amount
}

type Customer struct {
	FullName string
	Email    string
	Phone    string
}

// Order represents one checkout attempt. RefID is issued by this
// service and echoed back by the gateway; TransactionID is issued by
// the gateway at create time. Neither changes after construction.
type Order struct {
	RefID         string
	TransactionID string
	Customer      Customer
	Shipping      ShippingMethod
	Pickup        *PickupPoint
	Address       *HomeAddress
	Items         []LineItem
	Total         Amount
	Paid          bool
	CreatedAt     time.Time
}

func NewOrder(
	refID string,
	transactionID string,
	customer Customer,
	shipping ShippingMethod,
	pickup *PickupPoint,
	address *HomeAddress,
	items []LineItem,
	total Amount,
) (*Order, error) {
	if refID == "" {
		return nil, errors.New("refId is required")
	}
	if transactionID == "" {
		return nil, errors.New("transaction ID is required")
	}
	if customer.FullName == "" {
		return nil, errors.New("customer name is required")
	}
	if customer.Email == "" {
		return nil, errors.New("customer email is required")
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if shipping.IsPickup() {
		if pickup == nil || pickup.PointID == "" {
			return nil, errors.New("pickup shipping requires a pickup point")
		}
		address = nil
	} else {
		if address == nil || !address.Complete() {
			return nil, errors.New("home shipping requires a complete address")
		}
		pickup = nil
	}

	return &Order{
		RefID:         refID,
		TransactionID: transactionID,
		Customer:      customer,
		Shipping:      shipping,
		Pickup:        pickup,
		Address:       address,
		Items:         items,
		Total:         total,
		CreatedAt:     time.Now(),
	}, nil
}

// MarkPaid transitions the order to paid. It reports whether this
// call performed the transition; an already-paid order stays paid.
// Callers must hold whatever lock guards the order.
func (o *Order) MarkPaid() bool {
	if o.Paid {
		return false
	}
	o.Paid = true
	return true
}

// Reconstitute - special constructor for loading from a durable store.
func Reconstitute(
	refID string,
	transactionID string,
	customer Customer,
	shipping ShippingMethod,
	pickup *PickupPoint,
	address *HomeAddress,
	items []LineItem,
	total Amount,
	paid bool,
	createdAt time.Time,
) *Order {
	return &Order{
		RefID:         refID,
		TransactionID: transactionID,
		Customer:      customer,
		Shipping:      shipping,
		Pickup:        pickup,
		Address:       address,
		Items:         items,
		Total:         total,
		Paid:          paid,
		CreatedAt:     createdAt,
	}
}
