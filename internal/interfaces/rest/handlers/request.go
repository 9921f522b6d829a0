package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elorajewelry/checkout-service/internal/application/services"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

// The storefront speaks JSON; the gateway's callback arrives as a
// urlencoded form. Both endpoints accept either body encoding, and the
// checkout payload's field drift (totalCzk/amountCzk/amount) is
// collapsed here in one place.

type packetaPayload struct {
	PointID string `json:"pointId"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type addressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type itemPayload struct {
	Name         string      `json:"name"`
	Variant      string      `json:"variant"`
	Qty          int         `json:"qty"`
	LineTotalCzk json.Number `json:"lineTotalCzk"`
}

type checkoutPayload struct {
	FullName  string          `json:"fullName"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Shipping  string          `json:"shipping"`
	TotalCzk  json.Number     `json:"totalCzk"`
	AmountCzk json.Number     `json:"amountCzk"`
	Amount    json.Number     `json:"amount"`
	Packeta   *packetaPayload `json:"packeta"`
	Address   *addressPayload `json:"address"`
	Items     []itemPayload   `json:"items"`
}

func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func parseCheckout(r *http.Request) (services.CheckoutCommand, error) {
	var p checkoutPayload

	if isJSONRequest(r) {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return services.CheckoutCommand{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return services.CheckoutCommand{}, err
		}
		p.FullName = r.PostFormValue("fullName")
		p.Email = r.PostFormValue("email")
		p.Phone = r.PostFormValue("phone")
		p.Shipping = r.PostFormValue("shipping")
		p.TotalCzk = json.Number(r.PostFormValue("totalCzk"))
		p.AmountCzk = json.Number(r.PostFormValue("amountCzk"))
		p.Amount = json.Number(r.PostFormValue("amount"))
		if pointID := r.PostFormValue("packeta.pointId"); pointID != "" {
			p.Packeta = &packetaPayload{
				PointID: pointID,
				Name:    r.PostFormValue("packeta.name"),
				Address: r.PostFormValue("packeta.address"),
			}
		}
		if street := r.PostFormValue("address.street"); street != "" {
			p.Address = &addressPayload{
				Street:  street,
				City:    r.PostFormValue("address.city"),
				Zip:     r.PostFormValue("address.zip"),
				Country: r.PostFormValue("address.country"),
			}
		}
	}

	cmd := services.CheckoutCommand{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Shipping: p.Shipping,
		Amount:   firstNonEmpty(p.TotalCzk.String(), p.AmountCzk.String(), p.Amount.String()),
	}

	if p.Packeta != nil {
		cmd.Pickup = &domain.PickupPoint{
			PointID: p.Packeta.PointID,
			Name:    p.Packeta.Name,
			Address: p.Packeta.Address,
		}
	}
	if p.Address != nil {
		cmd.Address = &domain.HomeAddress{
			Street:  p.Address.Street,
			City:    p.Address.City,
			Zip:     p.Address.Zip,
			Country: p.Address.Country,
		}
	}

	// Items degrade display only; malformed entries are kept usable
	// rather than failing the checkout.
	for _, item := range p.Items {
		lineTotal, err := domain.ParseAmount(item.LineTotalCzk.String())
		if err != nil {
			lineTotal = domain.Amount{}
		}
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		cmd.Items = append(cmd.Items, domain.LineItem{
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  qty,
			LineTotal: lineTotal,
		})
	}

	return cmd, nil
}

type notifyPayload struct {
	RefID   string `json:"refId"`
	TransID string `json:"transId"`
	Status  string `json:"status"`
}

// parseNotification is deliberately forgiving: a body this handler
// cannot read is just an uninformative callback, never an error.
func parseNotification(r *http.Request) services.Notification {
	if isJSONRequest(r) {
		var p notifyPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return services.Notification{}
		}
		return services.Notification{
			RefID:         p.RefID,
			TransactionID: p.TransID,
			Status:        p.Status,
		}
	}

	if err := r.ParseForm(); err != nil {
		return services.Notification{}
	}
	return services.Notification{
		RefID:         r.PostFormValue("refId"),
		TransactionID: r.PostFormValue("transId"),
		Status:        r.PostFormValue("status"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
