package handlers

import (
	"net/http"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/application/services"
	"github.com/elorajewelry/checkout-service/internal/interfaces/rest"
)

type checkoutResponse struct {
	RefID         string              `json:"refId"`
	TransactionID string              `json:"transactionId"`
	RedirectURL   string              `json:"redirectUrl"`
	Shipping      string              `json:"shipping"`
	TotalCzk      float64             `json:"totalCzk"`
	PriceHalers   int64               `json:"priceHalers"`
	Packeta       *packetaPayload     `json:"packeta,omitempty"`
	Address       *addressPayload     `json:"address,omitempty"`
	ReturnURLs    services.ReturnURLs `json:"returnUrls"`
}

// InitCheckout handles POST /api/checkout/init.
func (h *Handlers) InitCheckout(w http.ResponseWriter, r *http.Request) {
	cmd, err := parseCheckout(r)
	if err != nil {
		rest.WriteError(w, application.NewValidationError("invalid request body"), h.logger)
		return
	}

	result, err := h.checkoutService.InitCheckout(r.Context(), cmd)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	resp := checkoutResponse{
		RefID:         result.RefID,
		TransactionID: result.TransactionID,
		RedirectURL:   result.RedirectURL,
		Shipping:      string(result.Shipping),
		TotalCzk:      result.Total.Float64(),
		PriceHalers:   result.PriceMinorUnits,
		ReturnURLs:    result.ReturnURLs,
	}
	if result.Pickup != nil {
		resp.Packeta = &packetaPayload{
			PointID: result.Pickup.PointID,
			Name:    result.Pickup.Name,
			Address: result.Pickup.Address,
		}
	}
	if result.Address != nil {
		resp.Address = &addressPayload{
			Street:  result.Address.Street,
			City:    result.Address.City,
			Zip:     result.Address.Zip,
			Country: result.Address.Country,
		}
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}
