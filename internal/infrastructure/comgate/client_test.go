package comgate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/config"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/comgate"
)

func testConfig(baseURL string) config.ComgateConfig {
	return config.ComgateConfig{
		Merchant:    "merchant-1",
		Secret:      "secret-1",
		Test:        true,
		BaseURL:     baseURL,
		ConnTimeout: 5 * time.Second,
	}
}

func createRequest() application.CreatePaymentRequest {
	return application.CreatePaymentRequest{
		PriceMinorUnits: 25000,
		Currency:        "CZK",
		Label:           "ELORA",
		RefID:           "elora-1",
		Method:          "ALL",
		Country:         "CZ",
		Email:           "jana@example.com",
		FullName:        "Jana Nováková",
		Delivery:        "PICKUP",
		Category:        "PHYSICAL_GOODS_ONLY",
		Language:        "cs",
	}
}

func TestCreatePayment_Success(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte("code=0&message=OK&transId=AB12-CD34-EF56&redirect=" + url.QueryEscape("https://payments.comgate.cz/client/instructions/index?id=AB12-CD34-EF56")))
	}))
	defer server.Close()

	client := comgate.NewClient(testConfig(server.URL))
	resp, err := client.CreatePayment(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "AB12-CD34-EF56", resp.TransactionID)
	assert.Equal(t, "https://payments.comgate.cz/client/instructions/index?id=AB12-CD34-EF56", resp.RedirectURL)

	// The request carries the prepare-only flag and credential, and
	// the price in minor units.
	assert.Equal(t, "true", got.Get("prepareOnly"))
	assert.Equal(t, "secret-1", got.Get("secret"))
	assert.Equal(t, "merchant-1", got.Get("merchant"))
	assert.Equal(t, "25000", got.Get("price"))
	assert.Equal(t, "elora-1", got.Get("refId"))
	assert.Equal(t, "true", got.Get("test"))
}

func TestCreatePayment_OmitsEmptyOptionalFields(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Write([]byte("code=0&message=OK&transId=T1&redirect=https%3A%2F%2Fexample.com"))
	}))
	defer server.Close()

	req := createRequest()
	req.Phone = ""

	client := comgate.NewClient(testConfig(server.URL))
	_, err := client.CreatePayment(context.Background(), req)
	require.NoError(t, err)

	_, present := got["phone"]
	assert.False(t, present, "empty phone must be omitted, not sent empty")
}

func TestCreatePayment_GatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("code=1400&message=unauthorized+merchant"))
	}))
	defer server.Close()

	client := comgate.NewClient(testConfig(server.URL))
	_, err := client.CreatePayment(context.Background(), createRequest())
	require.Error(t, err)

	gwErr, ok := comgate.IsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, 1400, gwErr.Code)
	assert.Equal(t, "unauthorized merchant", gwErr.Message)
	assert.Equal(t, http.StatusOK, gwErr.HTTPStatus)
	assert.Equal(t, "1400", gwErr.Fields["code"])
	assert.NotEmpty(t, gwErr.Raw)
}

func TestCreatePayment_OpaqueResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("<html><body>Access denied</body></html>"))
	}))
	defer server.Close()

	client := comgate.NewClient(testConfig(server.URL))
	_, err := client.CreatePayment(context.Background(), createRequest())
	require.Error(t, err)

	gwErr, ok := comgate.IsGatewayError(err)
	require.True(t, ok)
	assert.Nil(t, gwErr.Fields, "unparseable body must not be decoded")
	assert.Equal(t, http.StatusForbidden, gwErr.HTTPStatus)
	assert.Contains(t, gwErr.Raw, "Access denied")
}

func TestGetStatus_NormalizesCase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "T1", r.PostForm.Get("transId"))
		w.Write([]byte("code=0&message=OK&status=paid&transId=T1"))
	}))
	defer server.Close()

	client := comgate.NewClient(testConfig(server.URL))
	state, err := client.GetStatus(context.Background(), "T1")
	require.NoError(t, err)

	assert.Equal(t, "PAID", state.Status)
	assert.True(t, state.Completed())
}

func TestPaymentState_CompletionSet(t *testing.T) {
	completed := map[string]bool{
		"PAID":       true,
		"AUTHORIZED": true,
		"PENDING":    false,
		"CANCELLED":  false,
		"":           false,
		"WEIRD":      false,
	}
	for status, want := range completed {
		state := application.PaymentState{Status: status}
		assert.Equal(t, want, state.Completed(), "status %q", status)
	}
}

func TestCreatePayment_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := comgate.NewClient(testConfig(server.URL))
	_, err := client.CreatePayment(context.Background(), createRequest())
	require.Error(t, err)

	_, ok := comgate.IsGatewayError(err)
	assert.False(t, ok, "transport failure is not a gateway error")
}
