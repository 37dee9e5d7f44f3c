package order

import (
	"context"

	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/order/dto"
)

// UseCase drives the order lifecycle and is the single place that pairs the
// two inventory signals: scalar Product.stock moves at order creation and
// cancellation, size-keyed Inventory moves at payment and completion.
type UseCase interface {
	CreatePOSOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderResult, error)
	MarkPaid(ctx context.Context, orderID string) (*model.Order, error)
	Complete(ctx context.Context, orderID string) (*model.Order, error)
	Cancel(ctx context.Context, orderID string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*dto.OrderResult, error)
}
