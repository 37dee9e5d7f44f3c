package inventory

import (
	"context"

	"github.com/oybekdev/shopcore/internal/inventory/dto"
	"github.com/oybekdev/shopcore/internal/model"
)

// UseCase is the stock ledger: every quantity signal in the system is mutated
// through it, with an audit movement per scalar stock change.
type UseCase interface {
	// Scalar Product.stock mutations, sufficiency-checked and audited.
	AtomicDecreaseStock(ctx context.Context, input *dto.StockChangeInput) (*dto.StockResult, error)
	AtomicIncreaseStock(ctx context.Context, input *dto.StockChangeInput) (*dto.StockResult, error)

	// Size-keyed inventory mutations driven by the order lifecycle.
	DecreaseInventoryOnPayment(ctx context.Context, items []model.OrderItem) error
	RemoveInventoryOnCompletion(ctx context.Context, items []model.OrderItem) error

	// Manual size-keyed adjustment with audit trail.
	AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.Inventory, error)

	GetProductInventory(ctx context.Context, productID string) ([]model.Inventory, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, error)
}
