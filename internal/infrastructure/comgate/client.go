// Package comgate wraps the Comgate payment gateway's text protocol.
// Both requests and responses are flat urlencoded key-value bodies,
// not JSON; error responses may be HTML or a bare redirect page.
package comgate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/config"
)

type HTTPClient struct {
	baseURL    string
	merchant   string
	secret     string
	test       bool
	httpClient *http.Client
}

func NewClient(cfg config.ComgateConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		merchant: cfg.Merchant,
		secret:   cfg.Secret,
		test:     cfg.Test,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

var _ application.GatewayClient = (*HTTPClient)(nil)

// CreatePayment prepares a payment session server-to-server. The
// session is created with prepareOnly=true; the customer completes
// payment on the returned redirect URL, never through this process.
func (c *HTTPClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResponse, error) {
	params := url.Values{}
	params.Set("merchant", c.merchant)
	params.Set("prepareOnly", "true")
	params.Set("secret", c.secret)
	params.Set("test", strconv.FormatBool(c.test))
	params.Set("country", req.Country)
	params.Set("price", strconv.FormatInt(req.PriceMinorUnits, 10))
	params.Set("curr", req.Currency)
	params.Set("label", req.Label)
	params.Set("refId", req.RefID)
	params.Set("method", req.Method)

	// Optional fields are omitted, not sent empty.
	if req.Email != "" {
		params.Set("email", req.Email)
	}
	if req.Phone != "" {
		params.Set("phone", req.Phone)
	}
	if req.FullName != "" {
		params.Set("fullName", req.FullName)
	}
	if req.Delivery != "" {
		params.Set("delivery", req.Delivery)
	}
	if req.Category != "" {
		params.Set("category", req.Category)
	}
	if req.Language != "" {
		params.Set("lang", req.Language)
	}

	fields, err := c.send(ctx, "/v1.0/create", params)
	if err != nil {
		return nil, err
	}

	transID := fields["transId"]
	redirect := fields["redirect"]
	if transID == "" || redirect == "" {
		return nil, &GatewayError{
			Code:       0,
			Message:    "create response missing transId or redirect",
			Fields:     fields,
			HTTPStatus: http.StatusOK,
		}
	}

	return &application.CreatePaymentResponse{
		TransactionID: transID,
		RedirectURL:   redirect,
		Fields:        fields,
	}, nil
}

// GetStatus queries the authoritative payment state for a transaction.
// The status value is normalized to uppercase before comparison.
func (c *HTTPClient) GetStatus(ctx context.Context, transactionID string) (*application.PaymentState, error) {
	params := url.Values{}
	params.Set("merchant", c.merchant)
	params.Set("secret", c.secret)
	params.Set("test", strconv.FormatBool(c.test))
	params.Set("transId", transactionID)

	fields, err := c.send(ctx, "/v1.0/status", params)
	if err != nil {
		return nil, err
	}

	return &application.PaymentState{
		Status: strings.ToUpper(fields["status"]),
		Fields: fields,
	}, nil
}

func (c *HTTPClient) send(ctx context.Context, path string, params url.Values) (map[string]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	text := string(body)

	// Comgate can answer with HTML or a redirect page on failure, so
	// anything that does not look like key-value data is surfaced raw.
	if !looksLikeQuery(text) {
		return nil, &GatewayError{
			Raw:        text,
			HTTPStatus: resp.StatusCode,
		}
	}

	values, err := url.ParseQuery(text)
	if err != nil {
		return nil, &GatewayError{
			Raw:        text,
			HTTPStatus: resp.StatusCode,
		}
	}

	fields := make(map[string]string, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}

	code := 999
	if v, err := strconv.Atoi(fields["code"]); err == nil {
		code = v
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || code != 0 {
		return nil, &GatewayError{
			Code:       code,
			Message:    fields["message"],
			Fields:     fields,
			Raw:        text,
			HTTPStatus: resp.StatusCode,
		}
	}

	return fields, nil
}

func looksLikeQuery(text string) bool {
	return strings.Contains(text, "code=") || strings.Contains(text, "&")
}
