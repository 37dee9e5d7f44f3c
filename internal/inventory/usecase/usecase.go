package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/internal/inventory"
	"github.com/oybekdev/shopcore/internal/inventory/dto"
	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/lock"
	"github.com/oybekdev/shopcore/pkg/logger"
)

const (
	collectionProducts  = "products"
	collectionInventory = "inventory"
	collectionMovements = "stockMovements"
)

const (
	lockTTL           = 5 * time.Second
	lockWaitTimeout   = 2 * time.Second
	lockRetryInterval = 10 * time.Millisecond
)

var (
	ErrLockNotAcquired       = errors.New("system busy, could not acquire stock lock")
	ErrInsufficientInventory = errors.New("insufficient inventory")
)

type stockUseCase struct {
	products  store.Collection[model.Product]
	inv       store.Collection[model.Inventory]
	movements store.Collection[model.StockMovement]
	locker    lock.Locker
	logger    logger.ZapLogger
}

func NewStockUseCase(s *store.Store, locker lock.Locker, log logger.ZapLogger) inventory.UseCase {
	return &stockUseCase{
		products:  store.NewCollection[model.Product](s, collectionProducts),
		inv:       store.NewCollection[model.Inventory](s, collectionInventory),
		movements: store.NewCollection[model.StockMovement](s, collectionMovements),
		locker:    locker,
		logger:    log.Named("inventory"),
	}
}

// acquire blocks until the named lock is held or the wait budget runs out.
// The lock value is unique per acquisition so only the holder can release.
func (uc *stockUseCase) acquire(ctx context.Context, key string) (func(), error) {
	value := uuid.New().String()
	deadline := time.Now().Add(lockWaitTimeout)

	for {
		ok, err := uc.locker.AcquireLock(ctx, key, value, lockTTL)
		if err != nil {
			uc.logger.Error("lock backend error", zap.String("key", key), zap.Error(err))
		}
		if ok {
			release := func() {
				if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, value); err != nil {
					uc.logger.Warn("lock release failed", zap.String("key", key), zap.Error(err))
				}
			}
			return release, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func failure(stock, shortfall int, msg string) *dto.StockResult {
	return &dto.StockResult{Success: false, Stock: stock, Shortfall: shortfall, Error: msg}
}

// AtomicDecreaseStock runs the check-then-write sequence for Product.stock
// under a per-product lock. A shortfall is an ordinary failure result with no
// mutation and no movement record.
func (uc *stockUseCase) AtomicDecreaseStock(ctx context.Context, input *dto.StockChangeInput) (*dto.StockResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", input.Quantity)
	}

	release, err := uc.acquire(ctx, "lock:stock:"+input.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := uc.products.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return failure(0, 0, fmt.Sprintf("product %s not found", input.ProductID)), nil
	}

	if p.Stock < input.Quantity {
		return failure(p.Stock, input.Quantity-p.Stock,
			fmt.Sprintf("insufficient stock: have %d, need %d", p.Stock, input.Quantity)), nil
	}

	newStock := p.Stock - input.Quantity
	if err := uc.writeStock(ctx, p, newStock, -input.Quantity, input); err != nil {
		return nil, err
	}
	return &dto.StockResult{Success: true, Stock: newStock}, nil
}

// AtomicIncreaseStock is the symmetric restock operation. Increases are
// always accepted; only a missing product fails.
func (uc *stockUseCase) AtomicIncreaseStock(ctx context.Context, input *dto.StockChangeInput) (*dto.StockResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", input.Quantity)
	}

	release, err := uc.acquire(ctx, "lock:stock:"+input.ProductID)
	if err != nil {
		return nil, err
	}
	defer release()

	p, err := uc.products.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return failure(0, 0, fmt.Sprintf("product %s not found", input.ProductID)), nil
	}

	newStock := p.Stock + input.Quantity
	if err := uc.writeStock(ctx, p, newStock, input.Quantity, input); err != nil {
		return nil, err
	}
	return &dto.StockResult{Success: true, Stock: newStock}, nil
}

// writeStock persists the new scalar stock and appends the audit movement.
func (uc *stockUseCase) writeStock(ctx context.Context, p *model.Product, newStock, delta int, input *dto.StockChangeInput) error {
	now := time.Now()

	if _, err := uc.products.Update(ctx, p.ID, store.Record{"stock": newStock, "updatedAt": now}); err != nil {
		return err
	}

	movement := model.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		Delta:       delta,
		Reason:      input.Reason,
		StockBefore: p.Stock,
		StockAfter:  newStock,
		OrderID:     input.OrderID,
		UserID:      input.UserID,
		CreatedAt:   now,
	}
	if _, err := uc.movements.Create(ctx, movement); err != nil {
		return fmt.Errorf("stock updated but movement log failed: %w", err)
	}

	uc.logger.Info("stock changed",
		zap.String("productId", p.ID),
		zap.Int("delta", delta),
		zap.Int("stock", newStock),
		zap.String("reason", string(input.Reason)))
	return nil
}

// DecreaseInventoryOnPayment decrements the size-keyed quantity for each paid
// line item, clamped at zero. A missing (product, size) record is a silent
// no-op for that item; Product.stock is not touched here. Callers that need
// both signals updated pair this with AtomicDecreaseStock (the order usecase
// is the single place that does).
func (uc *stockUseCase) DecreaseInventoryOnPayment(ctx context.Context, items []model.OrderItem) error {
	for _, item := range items {
		inv, err := uc.findSize(ctx, item.ProductID, item.Size)
		if err != nil {
			return err
		}
		if inv == nil {
			uc.logger.Debug("no inventory record for paid item",
				zap.String("productId", item.ProductID), zap.String("size", item.Size))
			continue
		}

		newQuantity := inv.Quantity - item.Quantity
		if newQuantity < 0 {
			newQuantity = 0
		}
		if _, err := uc.inv.Update(ctx, inv.ID, store.Record{"quantity": newQuantity, "updatedAt": time.Now()}); err != nil {
			return err
		}
	}
	return nil
}

// RemoveInventoryOnCompletion deletes the matching size-keyed records when an
// order reaches its terminal state. This stock is gone, not zeroed.
func (uc *stockUseCase) RemoveInventoryOnCompletion(ctx context.Context, items []model.OrderItem) error {
	for _, item := range items {
		inv, err := uc.findSize(ctx, item.ProductID, item.Size)
		if err != nil {
			return err
		}
		if inv == nil {
			continue
		}
		if _, err := uc.inv.Remove(ctx, inv.ID); err != nil {
			return err
		}
	}
	return nil
}

// AdjustInventory applies a signed delta to one (product, size) quantity,
// creating the record on first stock-in, and logs an audit movement.
func (uc *stockUseCase) AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error) {
	release, err := uc.acquire(ctx, fmt.Sprintf("lock:inventory:%s:%s", input.ProductID, input.Size))
	if err != nil {
		return nil, err
	}
	defer release()

	inv, err := uc.findSize(ctx, input.ProductID, input.Size)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	before := 0
	if inv != nil {
		before = inv.Quantity
	}

	newQuantity := before + input.QuantityChange
	if newQuantity < 0 {
		return nil, ErrInsufficientInventory
	}

	if inv == nil {
		inv = &model.Inventory{
			ID:        uuid.New().String(),
			ProductID: input.ProductID,
			Size:      input.Size,
			Quantity:  newQuantity,
			UpdatedAt: now,
		}
		if _, err := uc.inv.Create(ctx, *inv); err != nil {
			return nil, err
		}
	} else {
		inv.Quantity = newQuantity
		inv.UpdatedAt = now
		if _, err := uc.inv.Update(ctx, inv.ID, store.Record{"quantity": newQuantity, "updatedAt": now}); err != nil {
			return nil, err
		}
	}

	reason := input.Reason
	if reason == "" {
		reason = model.ReasonManualAdjustment
	}
	movement := model.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		Delta:       input.QuantityChange,
		Reason:      reason,
		StockBefore: before,
		StockAfter:  newQuantity,
		UserID:      input.UserID,
		CreatedAt:   now,
	}
	if _, err := uc.movements.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("inventory updated but movement log failed: %w", err)
	}

	return inv, nil
}

func (uc *stockUseCase) GetProductInventory(ctx context.Context, productID string) ([]model.Inventory, error) {
	return uc.inv.Find(ctx, func(inv model.Inventory) bool {
		return inv.ProductID == productID
	})
}

func (uc *stockUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error) {
	movements, err := uc.movements.Find(ctx, func(m model.StockMovement) bool {
		if filters.ProductID != "" && m.ProductID != filters.ProductID {
			return false
		}
		if filters.OrderID != "" && m.OrderID != filters.OrderID {
			return false
		}
		if filters.Reason != "" && m.Reason != filters.Reason {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	if filters.Limit > 0 && len(movements) > filters.Limit {
		movements = movements[:filters.Limit]
	}
	return movements, nil
}

func (uc *stockUseCase) findSize(ctx context.Context, productID, size string) (*model.Inventory, error) {
	return uc.inv.FindOne(ctx, func(inv model.Inventory) bool {
		return inv.ProductID == productID && inv.Size == size
	})
}
