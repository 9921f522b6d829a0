package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/domain"
	"github.com/elorajewelry/checkout-service/internal/infrastructure/persistence/memory"
)

func newOrder(t *testing.T, refID, transactionID string) *domain.Order {
	t.Helper()
	amount, err := domain.ParseAmount("250")
	require.NoError(t, err)
	order, err := domain.NewOrder(
		refID, transactionID,
		domain.Customer{FullName: "Jana Nováková", Email: "jana@example.com"},
		domain.ShippingPickupCZ,
		&domain.PickupPoint{PointID: "Z123"},
		nil, nil,
		amount,
	)
	require.NoError(t, err)
	return order
}

func TestOrderStore_InsertAndLookup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	order := newOrder(t, "elora-1", "T1")
	require.NoError(t, store.Insert(ctx, order))

	byRef, err := store.GetByRef(ctx, "elora-1")
	require.NoError(t, err)
	assert.Equal(t, "T1", byRef.TransactionID)
	assert.False(t, byRef.Paid)

	byTrans, err := store.GetByTransactionID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "elora-1", byTrans.RefID)
}

func TestOrderStore_DuplicateRefRejected(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	require.NoError(t, store.Insert(ctx, newOrder(t, "elora-1", "T1")))
	assert.Error(t, store.Insert(ctx, newOrder(t, "elora-1", "T2")))
}

func TestOrderStore_UnknownLookups(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	_, err := store.GetByRef(ctx, "nope")
	assert.ErrorIs(t, err, application.ErrOrderNotFound)

	_, err = store.GetByTransactionID(ctx, "nope")
	assert.ErrorIs(t, err, application.ErrOrderNotFound)
}

func TestOrderStore_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	require.NoError(t, store.Insert(ctx, newOrder(t, "elora-1", "T1")))

	first, err := store.GetByRef(ctx, "elora-1")
	require.NoError(t, err)
	first.Paid = true
	first.Pickup.PointID = "mutated"

	second, err := store.GetByRef(ctx, "elora-1")
	require.NoError(t, err)
	assert.False(t, second.Paid)
	assert.Equal(t, "Z123", second.Pickup.PointID)
}

func TestOrderStore_MarkPaidTwice(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	require.NoError(t, store.Insert(ctx, newOrder(t, "elora-1", "T1")))

	performed, err := store.MarkPaid(ctx, "elora-1")
	require.NoError(t, err)
	assert.True(t, performed)

	performed, err = store.MarkPaid(ctx, "elora-1")
	require.NoError(t, err)
	assert.False(t, performed)

	order, err := store.GetByRef(ctx, "elora-1")
	require.NoError(t, err)
	assert.True(t, order.Paid)
}

func TestOrderStore_MarkPaidUnknownOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()

	performed, err := store.MarkPaid(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, performed)
}

func TestOrderStore_MarkPaidConcurrent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	require.NoError(t, store.Insert(ctx, newOrder(t, "elora-1", "T1")))

	const goroutines = 32
	var wg sync.WaitGroup
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			performed, err := store.MarkPaid(ctx, "elora-1")
			assert.NoError(t, err)
			results <- performed
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for performed := range results {
		if performed {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller must perform the transition")
}
