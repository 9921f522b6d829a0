package handlers

import (
	"net/http"

	"github.com/elorajewelry/checkout-service/internal/interfaces/rest"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, healthResponse{OK: true})
}
