package memory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopatlas/orderflow/internal/order/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSaveAndGet(t *testing.T) {
	repo := NewRepository(testLogger())
	ctx := context.Background()

	order := domain.Order{OrderID: "ABC123", TotalAmount: decimal.RequireFromString("250.00")}
	require.NoError(t, repo.Save(ctx, order.OrderID, order))

	got, err := repo.Get(ctx, "ABC123")
	require.NoError(t, err)
	require.Equal(t, "ABC123", got.OrderID)
	require.True(t, got.TotalAmount.Equal(order.TotalAmount))
}

func TestGetUnknownOrder(t *testing.T) {
	repo := NewRepository(testLogger())

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSaveIsIdempotentInsert(t *testing.T) {
	repo := NewRepository(testLogger())
	ctx := context.Background()

	first := domain.Order{OrderID: "ABC123", Currency: "USD"}
	second := domain.Order{OrderID: "ABC123", Currency: "ILS"}
	require.NoError(t, repo.Save(ctx, "ABC123", first))
	require.NoError(t, repo.Save(ctx, "ABC123", second))

	got, err := repo.Get(ctx, "ABC123")
	require.NoError(t, err)
	require.Equal(t, "USD", got.Currency, "first write must win")
}

func TestClear(t *testing.T) {
	repo := NewRepository(testLogger())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "A", domain.Order{OrderID: "A"}))
	require.NoError(t, repo.Clear(ctx))

	_, err := repo.Get(ctx, "A")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestConcurrentSavesAndReads(t *testing.T) {
	repo := NewRepository(testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Save(ctx, "shared", domain.Order{OrderID: "shared", Currency: "USD"})
		}()
		go func() {
			defer wg.Done()
			if got, err := repo.Get(ctx, "shared"); err == nil {
				// Never observe a partially written record.
				if got.OrderID != "shared" || got.Currency != "USD" {
					t.Errorf("torn read: %+v", got)
				}
			}
		}()
	}
	wg.Wait()
}
