package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/application/services"
	"github.com/elorajewelry/checkout-service/internal/config"
	"github.com/elorajewelry/checkout-service/internal/domain"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/comgate"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/persistence/memory"
	"github.com/elorajewelry/checkout-service/internal/interfaces/rest/handlers"
	"github.com/elorajewelry/checkout-service/internal/worker"
)

type fixture struct {
	router     chi.Router
	store      *memory.OrderStore
	gateway    *services.MockGatewayClient
	notifier   *services.MockNotifier
	dispatcher *worker.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewOrderStore()
	gateway := services.NewMockGatewayClient()
	notifier := services.NewMockNotifier()

	comgateCfg := config.ComgateConfig{Merchant: "merchant-1", Secret: "secret-1", Test: true}
	checkoutCfg := config.CheckoutConfig{
		PublicBaseURL: "https://www.elorajewelry.cz",
		Label:         "ELORA",
		Currency:      "CZK",
		Language:      "cs",
		RefIDPrefix:   "elora",
		SuccessPath:   "/payment-success",
		CancelledPath: "/payment-failed",
		PendingPath:   "/payment-failed",
	}

	checkoutService := services.NewCheckoutService(store, gateway, comgateCfg, checkoutCfg, logger)
	reconciler := services.NewReconcileService(store, gateway, notifier, logger)
	dispatcher := worker.NewDispatcher(10*time.Second, logger)

	h := handlers.NewHandlers(checkoutService, reconciler, dispatcher, logger)

	router := chi.NewRouter()
	router.Get("/health", h.Health)
	router.Post("/api/checkout/init", h.InitCheckout)
	router.Post("/api/comgate/notify", h.Notify)

	return &fixture{
		router:     router,
		store:      store,
		gateway:    gateway,
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

func (f *fixture) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.dispatcher.Drain(ctx))
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestInitCheckout_PickupSuccess(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/checkout/init", `{
		"fullName": "Jana Nováková",
		"email": "jana@example.com",
		"shipping": "cz_pickup",
		"totalCzk": 250,
		"packeta": {"pointId": "Z123", "name": "Praha 1"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RefID       string  `json:"refId"`
		TransID     string  `json:"transactionId"`
		RedirectURL string  `json:"redirectUrl"`
		Shipping    string  `json:"shipping"`
		TotalCzk    float64 `json:"totalCzk"`
		PriceHalers int64   `json:"priceHalers"`
		Packeta     *struct {
			PointID string `json:"pointId"`
		} `json:"packeta"`
		ReturnURLs struct {
			Paid      string `json:"paid"`
			Cancelled string `json:"cancelled"`
			Pending   string `json:"pending"`
		} `json:"returnUrls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RefID)
	assert.Equal(t, int64(25000), resp.PriceHalers)
	assert.Equal(t, 250.0, resp.TotalCzk)
	assert.Equal(t, "cz_pickup", resp.Shipping)
	require.NotNil(t, resp.Packeta)
	assert.Equal(t, "Z123", resp.Packeta.PointID)
	assert.Equal(t, resp.ReturnURLs.Cancelled, resp.ReturnURLs.Pending)
	assert.Contains(t, resp.ReturnURLs.Paid, url.QueryEscape(resp.RefID))
}

func TestInitCheckout_AcceptsAlternateAmountFieldNames(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/checkout/init", `{
		"fullName": "Jana Nováková",
		"email": "jana@example.com",
		"shipping": "cz_pickup",
		"amountCzk": 99.99,
		"packeta": {"pointId": "Z123"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"priceHalers":9999`)
}

func TestInitCheckout_MissingAddress(t *testing.T) {
	f := newFixture(t)

	rec := f.postJSON(t, "/api/checkout/init", `{
		"fullName": "Jana Nováková",
		"email": "jana@example.com",
		"shipping": "cz_home",
		"totalCzk": 250
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"address required (street, city, zip, country)"}`, rec.Body.String())
}

func TestInitCheckout_FormEncodedBody(t *testing.T) {
	f := newFixture(t)

	form := url.Values{}
	form.Set("fullName", "Jana Nováková")
	form.Set("email", "jana@example.com")
	form.Set("shipping", "cz_pickup")
	form.Set("totalCzk", "250")
	form.Set("packeta.pointId", "Z123")

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/init", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"priceHalers":25000`)
}

func TestInitCheckout_GatewayFailureIs502WithDiagnostics(t *testing.T) {
	f := newFixture(t)
	f.gateway.CreatePaymentFn = func(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResponse, error) {
		return nil, &comgate.GatewayError{
			Code:       1400,
			Message:    "unauthorized merchant",
			Fields:     map[string]string{"code": "1400", "message": "unauthorized merchant"},
			Raw:        "code=1400&message=unauthorized+merchant",
			HTTPStatus: http.StatusOK,
		}
	}

	rec := f.postJSON(t, "/api/checkout/init", `{
		"fullName": "Jana Nováková",
		"email": "jana@example.com",
		"shipping": "cz_pickup",
		"totalCzk": 250,
		"packeta": {"pointId": "Z123"}
	}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Message    string            `json:"message"`
		Comgate    map[string]string `json:"comgate"`
		Raw        string            `json:"raw"`
		HTTPStatus int               `json:"httpStatus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized merchant", resp.Comgate["message"])
	assert.NotEmpty(t, resp.Raw)
	assert.Equal(t, http.StatusOK, resp.HTTPStatus)
}

func TestNotify_AlwaysAcknowledges(t *testing.T) {
	f := newFixture(t)

	// Even a garbage body gets 200 "OK": the gateway must never
	// retry-storm this endpoint.
	rec := f.postJSON(t, "/api/comgate/notify", `{{{not json`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	f.drain(t)
	assert.Equal(t, 0, f.notifier.OwnerCallCount())
}

func TestNotify_SettlesPaidOrder(t *testing.T) {
	f := newFixture(t)
	f.gateway.GetStatusFn = func(ctx context.Context, transactionID string) (*application.PaymentState, error) {
		return &application.PaymentState{Status: "PAID"}, nil
	}

	init := f.postJSON(t, "/api/checkout/init", `{
		"fullName": "Jana Nováková",
		"email": "jana@example.com",
		"shipping": "cz_pickup",
		"totalCzk": 250,
		"packeta": {"pointId": "Z123"}
	}`)
	require.Equal(t, http.StatusOK, init.Code)

	var created struct {
		RefID string `json:"refId"`
	}
	require.NoError(t, json.Unmarshal(init.Body.Bytes(), &created))

	// Comgate delivers its callback as a urlencoded form.
	form := url.Values{}
	form.Set("refId", created.RefID)
	form.Set("status", "PAID")
	req := httptest.NewRequest(http.MethodPost, "/api/comgate/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	f.drain(t)

	order, err := f.store.GetByRef(context.Background(), created.RefID)
	require.NoError(t, err)
	assert.True(t, order.Paid)
	assert.Equal(t, 1, f.notifier.OwnerCallCount())
	assert.Equal(t, 1, f.notifier.CustomerCallCount())
}

func TestNotify_DuplicateCallbacksSendOneEmailPair(t *testing.T) {
	f := newFixture(t)
	f.gateway.GetStatusFn = func(ctx context.Context, transactionID string) (*application.PaymentState, error) {
		return &application.PaymentState{Status: "PAID"}, nil
	}

	amount, err := domain.ParseAmount("250")
	require.NoError(t, err)
	order, err := domain.NewOrder(
		"elora-1", "T1",
		domain.Customer{FullName: "Jana Nováková", Email: "jana@example.com"},
		domain.ShippingPickupCZ,
		&domain.PickupPoint{PointID: "Z123"},
		nil, nil,
		amount,
	)
	require.NoError(t, err)
	require.NoError(t, f.store.Insert(context.Background(), order))

	body := `{"refId": "elora-1", "status": "PAID"}`
	rec1 := f.postJSON(t, "/api/comgate/notify", body)
	rec2 := f.postJSON(t, "/api/comgate/notify", body)
	assert.Equal(t, http.StatusOK, rec1.Code)
	assert.Equal(t, http.StatusOK, rec2.Code)

	f.drain(t)

	stored, err := f.store.GetByRef(context.Background(), "elora-1")
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.Equal(t, 1, f.notifier.OwnerCallCount())
	assert.Equal(t, 1, f.notifier.CustomerCallCount())
}

func TestNotify_TransactionIDOnlyCallback(t *testing.T) {
	f := newFixture(t)
	f.gateway.GetStatusFn = func(ctx context.Context, transactionID string) (*application.PaymentState, error) {
		return &application.PaymentState{Status: "AUTHORIZED"}, nil
	}

	amount, err := domain.ParseAmount("250")
	require.NoError(t, err)
	order, err := domain.NewOrder(
		"elora-2", "T1",
		domain.Customer{FullName: "Jana Nováková", Email: "jana@example.com"},
		domain.ShippingPickupCZ,
		&domain.PickupPoint{PointID: "Z123"},
		nil, nil,
		amount,
	)
	require.NoError(t, err)
	require.NoError(t, f.store.Insert(context.Background(), order))

	rec := f.postJSON(t, "/api/comgate/notify", `{"transId": "T1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.drain(t)

	stored, err := f.store.GetByRef(context.Background(), "elora-2")
	require.NoError(t, err)
	assert.True(t, stored.Paid)
}
