package comgate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/config"
)

// RetryClient retries transport failures and gateway 5xx responses.
// Business rejections (code != 0 on a 2xx response) are never retried.
// Retrying create is safe because refId is unique at the gateway.
type RetryClient struct {
	inner      application.GatewayClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner application.GatewayClient, cfg config.RetryConfig) application.GatewayClient {
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResponse, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.CreatePaymentResponse, error) {
			return r.inner.CreatePayment(ctx, req)
		},
	)
}

func (r *RetryClient) GetStatus(ctx context.Context, transactionID string) (*application.PaymentState, error) {
	return retry(
		r,
		ctx,
		func(ctx context.Context) (*application.PaymentState, error) {
			return r.inner.GetStatus(ctx, transactionID)
		},
	)
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Helper: to check retryable errors
func isRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		// Unparseable responses carry whatever HTTP status the gateway
		// answered with; only server-side failures are worth retrying.
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
