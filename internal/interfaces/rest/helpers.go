package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/comgate"
)

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type messageResponse struct {
	Message string `json:"message"`
}

type gatewayFailureResponse struct {
	Message    string            `json:"message"`
	Comgate    map[string]string `json:"comgate"`
	Raw        string            `json:"raw,omitempty"`
	HTTPStatus int               `json:"httpStatus"`
}

// WriteError maps application and gateway errors to HTTP responses.
// Gateway failures keep their diagnostic payload verbatim so operators
// can debug allow-listing and credential issues from the response.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if gwErr, ok := comgate.IsGatewayError(err); ok {
		WriteJSON(w, http.StatusBadGateway, gatewayFailureResponse{
			Message:    "Comgate create payment failed",
			Comgate:    gwErr.Fields,
			Raw:        gwErr.Raw,
			HTTPStatus: gwErr.HTTPStatus,
		})
		return
	}

	if svcErr, ok := application.IsServiceError(err); ok {
		if svcErr.HTTPStatus >= 500 {
			logger.Error("request failed", "code", svcErr.Code, "error", err)
		}
		WriteJSON(w, svcErr.HTTPStatus, messageResponse{Message: svcErr.Message})
		return
	}

	logger.Error("unhandled error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, messageResponse{Message: "Server error"})
}
