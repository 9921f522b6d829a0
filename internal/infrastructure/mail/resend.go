// Package mail delivers order confirmation emails through the Resend
// HTTP API. An absent API key disables delivery; the service keeps
// settling orders and logs the skip.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/config"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

type ResendNotifier struct {
	baseURL    string
	apiKey     string
	from       string
	ownerEmail string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewResendNotifier(cfg config.MailConfig, logger *slog.Logger) *ResendNotifier {
	return &ResendNotifier{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		ownerEmail: cfg.OwnerEmail,
		httpClient: &http.Client{
			Timeout: cfg.SendTimeout,
		},
		logger: logger,
	}
}

var _ application.Notifier = (*ResendNotifier)(nil)

// Enabled reports whether outbound mail is configured.
func (n *ResendNotifier) Enabled() bool {
	return n.apiKey != "" && n.from != ""
}

func (n *ResendNotifier) NotifyOwner(ctx context.Context, order *domain.Order) error {
	if n.ownerEmail == "" {
		n.logger.Warn("owner email not configured, skipping owner notification", "ref_id", order.RefID)
		return nil
	}
	subject, html := ownerMessage(order)
	return n.send(ctx, n.ownerEmail, subject, html)
}

func (n *ResendNotifier) NotifyCustomer(ctx context.Context, order *domain.Order) error {
	subject, html := customerMessage(order)
	return n.send(ctx, order.Customer.Email, subject, html)
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *ResendNotifier) send(ctx context.Context, to, subject, html string) error {
	if !n.Enabled() {
		n.logger.Warn("mail not configured, skipping send", "to", to, "subject", subject)
		return nil
	}

	jsonData, err := json.Marshal(sendRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
