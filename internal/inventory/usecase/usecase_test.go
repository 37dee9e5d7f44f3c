package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybekdev/shopcore/internal/inventory"
	"github.com/oybekdev/shopcore/internal/inventory/dto"
	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/lock"
	"github.com/oybekdev/shopcore/pkg/logger"
)

func newTestLedger(t *testing.T) (inventory.UseCase, *store.Store) {
	t.Helper()
	s := store.New(store.NewMemoryBackend(false))
	return NewStockUseCase(s, lock.NewLocalLocker(), logger.NewNop()), s
}

func seedProduct(t *testing.T, s *store.Store, id string, stock int) {
	t.Helper()
	_, err := s.Create(context.Background(), collectionProducts, store.Record{
		"id":    id,
		"name":  "product " + id,
		"stock": stock,
	})
	require.NoError(t, err)
}

func seedInventory(t *testing.T, s *store.Store, id, productID, size string, quantity int) {
	t.Helper()
	_, err := s.Create(context.Background(), collectionInventory, store.Record{
		"id":        id,
		"productId": productID,
		"size":      size,
		"quantity":  quantity,
	})
	require.NoError(t, err)
}

func productStock(t *testing.T, s *store.Store, id string) int {
	t.Helper()
	rec, err := s.GetByID(context.Background(), collectionProducts, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return int(rec["stock"].(float64))
}

func movementCount(t *testing.T, s *store.Store) int {
	t.Helper()
	n, err := s.Count(context.Background(), collectionMovements, nil)
	require.NoError(t, err)
	return n
}

func TestAtomicDecreaseStock(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedProduct(t, s, "P1", 10)

	result, err := ledger.AtomicDecreaseStock(ctx, &dto.StockChangeInput{
		ProductID: "P1", Quantity: 3, Reason: model.ReasonPurchase, UserID: "u1", OrderID: "o1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 7, result.Stock)
	assert.Equal(t, 7, productStock(t, s, "P1"))

	movements, err := ledger.ListMovements(ctx, &dto.MovementFilters{ProductID: "P1"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -3, movements[0].Delta)
	assert.Equal(t, model.ReasonPurchase, movements[0].Reason)
	assert.Equal(t, 10, movements[0].StockBefore)
	assert.Equal(t, 7, movements[0].StockAfter)
	assert.Equal(t, "o1", movements[0].OrderID)
	assert.Equal(t, "u1", movements[0].UserID)
}

func TestOversellBlocked(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedProduct(t, s, "P1", 3)

	result, err := ledger.AtomicDecreaseStock(ctx, &dto.StockChangeInput{
		ProductID: "P1", Quantity: 5, Reason: model.ReasonPurchase, UserID: "u1",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Stock)
	assert.Equal(t, 2, result.Shortfall)
	assert.NotEmpty(t, result.Error)

	// No mutation, no audit record.
	assert.Equal(t, 3, productStock(t, s, "P1"))
	assert.Equal(t, 0, movementCount(t, s))
}

func TestStockSufficiencyInvariant(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedProduct(t, s, "P1", 10)

	steps := []struct {
		quantity  int
		wantOK    bool
		wantStock int
	}{
		{3, true, 7},
		{4, true, 3},
		{4, false, 3},
		{3, true, 0},
		{1, false, 0},
	}
	for _, step := range steps {
		result, err := ledger.AtomicDecreaseStock(ctx, &dto.StockChangeInput{
			ProductID: "P1", Quantity: step.quantity, Reason: model.ReasonPurchase, UserID: "u1",
		})
		require.NoError(t, err)
		assert.Equal(t, step.wantOK, result.Success)
		assert.Equal(t, step.wantStock, productStock(t, s, "P1"))
	}
}

func TestAtomicIncreaseStock(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedProduct(t, s, "P1", 0)

	result, err := ledger.AtomicIncreaseStock(ctx, &dto.StockChangeInput{
		ProductID: "P1", Quantity: 8, Reason: model.ReasonReturn, UserID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 8, result.Stock)

	movements, err := ledger.ListMovements(ctx, &dto.MovementFilters{ProductID: "P1"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 8, movements[0].Delta)
}

func TestDecreaseStockUnknownProduct(t *testing.T) {
	ledger, _ := newTestLedger(t)

	result, err := ledger.AtomicDecreaseStock(context.Background(), &dto.StockChangeInput{
		ProductID: "missing", Quantity: 1, Reason: model.ReasonPurchase, UserID: "u1",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not found")
}

func TestDecreaseStockRejectsNonPositiveQuantity(t *testing.T) {
	ledger, _ := newTestLedger(t)

	_, err := ledger.AtomicDecreaseStock(context.Background(), &dto.StockChangeInput{
		ProductID: "P1", Quantity: 0, Reason: model.ReasonPurchase, UserID: "u1",
	})
	require.Error(t, err)
}

func TestDecreaseInventoryOnPayment(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedInventory(t, s, "i1", "P1", "M", 5)

	err := ledger.DecreaseInventoryOnPayment(ctx, []model.OrderItem{
		{ProductID: "P1", Size: "M", Quantity: 2},
	})
	require.NoError(t, err)

	items, err := ledger.GetProductInventory(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestDecreaseInventoryClampsAtZero(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedInventory(t, s, "i1", "P1", "M", 5)

	err := ledger.DecreaseInventoryOnPayment(ctx, []model.OrderItem{
		{ProductID: "P1", Size: "M", Quantity: 100},
	})
	require.NoError(t, err)

	items, err := ledger.GetProductInventory(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Quantity)
}

func TestDecreaseInventoryMissingRecordIsNoOp(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedInventory(t, s, "i1", "P1", "M", 5)

	err := ledger.DecreaseInventoryOnPayment(ctx, []model.OrderItem{
		{ProductID: "P1", Size: "XL", Quantity: 1},
		{ProductID: "P2", Size: "M", Quantity: 1},
	})
	require.NoError(t, err)

	items, err := ledger.GetProductInventory(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestRemoveInventoryOnCompletion(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()
	seedInventory(t, s, "i1", "P1", "M", 2)
	seedInventory(t, s, "i2", "P1", "L", 4)

	err := ledger.RemoveInventoryOnCompletion(ctx, []model.OrderItem{
		{ProductID: "P1", Size: "M", Quantity: 2},
	})
	require.NoError(t, err)

	// The M record is gone entirely, not zeroed; L is untouched.
	items, err := ledger.GetProductInventory(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "L", items[0].Size)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestAdjustInventory(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	// First stock-in creates the record.
	inv, err := ledger.AdjustInventory(ctx, &dto.AdjustInventoryInput{
		ProductID: "P1", Size: "M", QuantityChange: 5, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Quantity)

	inv, err = ledger.AdjustInventory(ctx, &dto.AdjustInventoryInput{
		ProductID: "P1", Size: "M", QuantityChange: -2, Reason: model.ReasonDamage, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Quantity)

	_, err = ledger.AdjustInventory(ctx, &dto.AdjustInventoryInput{
		ProductID: "P1", Size: "M", QuantityChange: -10, UserID: "u1",
	})
	assert.ErrorIs(t, err, ErrInsufficientInventory)

	movements, err := ledger.ListMovements(ctx, &dto.MovementFilters{ProductID: "P1"})
	require.NoError(t, err)
	assert.Len(t, movements, 2)

	damaged, err := ledger.ListMovements(ctx, &dto.MovementFilters{
		ProductID: "P1", Reason: model.ReasonDamage,
	})
	require.NoError(t, err)
	require.Len(t, damaged, 1)
	assert.Equal(t, -2, damaged[0].Delta)
}

func TestConcurrentDecreasesNeverOversell(t *testing.T) {
	ledger, s := newTestLedger(t)
	ctx := context.Background()

	const initialStock = 20
	const requests = 50
	seedProduct(t, s, "P1", initialStock)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := ledger.AtomicDecreaseStock(ctx, &dto.StockChangeInput{
				ProductID: "P1", Quantity: 1, Reason: model.ReasonPurchase, UserID: "u1",
			})
			if err == nil && result.Success {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(initialStock), successes.Load())
	assert.Equal(t, 0, productStock(t, s, "P1"))
	assert.Equal(t, initialStock, movementCount(t, s))
}
