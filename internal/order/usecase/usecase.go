package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/internal/coupon"
	coupdto "github.com/oybekdev/shopcore/internal/coupon/dto"
	"github.com/oybekdev/shopcore/internal/inventory"
	invdto "github.com/oybekdev/shopcore/internal/inventory/dto"
	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/order"
	"github.com/oybekdev/shopcore/internal/order/dto"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/logger"
)

const (
	collectionProducts   = "products"
	collectionOrders     = "orders"
	collectionOrderItems = "orderItems"
)

var (
	ErrNoItems           = errors.New("order has no items")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type orderUseCase struct {
	products store.Collection[model.Product]
	orders   store.Collection[model.Order]
	items    store.Collection[model.OrderItem]
	ledger   inventory.UseCase
	coupons  coupon.UseCase
	logger   logger.ZapLogger
}

func NewOrderUseCase(s *store.Store, ledger inventory.UseCase, coupons coupon.UseCase, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		products: store.NewCollection[model.Product](s, collectionProducts),
		orders:   store.NewCollection[model.Order](s, collectionOrders),
		items:    store.NewCollection[model.OrderItem](s, collectionOrderItems),
		ledger:   ledger,
		coupons:  coupons,
		logger:   log.Named("order"),
	}
}

func orderNumber(source model.OrderSource) string {
	return fmt.Sprintf("%s-%d-%04d", source, time.Now().Unix(), rand.Intn(10000))
}

// CreatePOSOrder validates every line item against the catalog, applies an
// optional coupon, persists the order and decrements scalar stock per item.
// CASH orders are confirmed immediately; terminal payments stay PENDING
// until MarkPaid.
func (uc *orderUseCase) CreatePOSOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderResult, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}

	total := 0.0
	prices := make(map[string]float64, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity %d for product %s", item.Quantity, item.ProductID)
		}
		p, err := uc.products.Get(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		prices[item.ProductID] = p.Price
		total += p.Price * float64(item.Quantity)
	}

	discount := 0.0
	if input.CouponCode != "" {
		redeemed, err := uc.coupons.Redeem(ctx, &coupdto.RedeemInput{
			Code:       input.CouponCode,
			UserID:     userID(input),
			OrderTotal: total,
		})
		if err != nil {
			return nil, fmt.Errorf("coupon %s: %w", input.CouponCode, err)
		}
		discount = redeemed.Discount
		total -= discount
	}

	status := model.OrderStatusPending
	if input.PaymentMethod == "CASH" {
		status = model.OrderStatusPaid
	}

	now := time.Now()
	created, err := uc.orders.Create(ctx, model.Order{
		UserID:        input.UserID,
		OrderNumber:   orderNumber(input.Source),
		Status:        status,
		Source:        input.Source,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		CouponCode:    input.CouponCode,
		Discount:      discount,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	createdItems := make([]model.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		saved, err := uc.items.Create(ctx, model.OrderItem{
			OrderID:   created.ID,
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     prices[item.ProductID],
		})
		if err != nil {
			return nil, err
		}
		createdItems = append(createdItems, *saved)
	}

	// Scalar stock moves at creation. For sized items a shortfall only
	// warns: the size-keyed inventory is the authoritative signal there.
	// Sizeless items have no other signal, so a shortfall fails the order.
	for _, item := range createdItems {
		result, err := uc.ledger.AtomicDecreaseStock(ctx, &invdto.StockChangeInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Reason:    model.ReasonPurchase,
			UserID:    userID(input),
			OrderID:   created.ID,
		})
		if err != nil {
			return nil, err
		}
		if !result.Success {
			if item.Size != "" {
				uc.logger.Warn("stock decrease failed for sized item",
					zap.String("orderId", created.ID),
					zap.String("productId", item.ProductID),
					zap.String("error", result.Error))
				continue
			}
			return nil, fmt.Errorf("failed to decrease stock for %s: %s", item.ProductID, result.Error)
		}
	}

	if status == model.OrderStatusPaid {
		if err := uc.ledger.DecreaseInventoryOnPayment(ctx, createdItems); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("order created",
		zap.String("orderId", created.ID),
		zap.String("orderNumber", created.OrderNumber),
		zap.String("status", string(created.Status)),
		zap.Float64("total", created.Total))
	return &dto.OrderResult{Order: created, Items: createdItems, Discount: discount}, nil
}

// MarkPaid confirms payment for a pending order and decrements the
// size-keyed inventory for its items.
func (uc *orderUseCase) MarkPaid(ctx context.Context, orderID string) (*model.Order, error) {
	o, items, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: %s -> PAID", ErrInvalidTransition, o.Status)
	}

	if err := uc.ledger.DecreaseInventoryOnPayment(ctx, items); err != nil {
		return nil, err
	}
	return uc.setStatus(ctx, o.ID, model.OrderStatusPaid)
}

// Complete marks a paid order fully done and removes its size-keyed
// inventory records outright.
func (uc *orderUseCase) Complete(ctx context.Context, orderID string) (*model.Order, error) {
	o, items, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPaid {
		return nil, fmt.Errorf("%w: %s -> COMPLETED", ErrInvalidTransition, o.Status)
	}

	if err := uc.ledger.RemoveInventoryOnCompletion(ctx, items); err != nil {
		return nil, err
	}
	return uc.setStatus(ctx, o.ID, model.OrderStatusCompleted)
}

// Cancel restocks the scalar counter for every line item and releases a
// one-time coupon so it can be used again.
func (uc *orderUseCase) Cancel(ctx context.Context, orderID string) (*model.Order, error) {
	o, items, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusPending && o.Status != model.OrderStatusPaid {
		return nil, fmt.Errorf("%w: %s -> CANCELLED", ErrInvalidTransition, o.Status)
	}

	for _, item := range items {
		result, err := uc.ledger.AtomicIncreaseStock(ctx, &invdto.StockChangeInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Reason:    model.ReasonReturn,
			UserID:    o.UserID,
			OrderID:   o.ID,
		})
		if err != nil {
			return nil, err
		}
		if !result.Success {
			uc.logger.Warn("restock failed on cancellation",
				zap.String("orderId", o.ID),
				zap.String("productId", item.ProductID),
				zap.String("error", result.Error))
		}
	}

	if o.CouponCode != "" {
		if err := uc.coupons.Release(ctx, o.CouponCode); err != nil {
			uc.logger.Warn("coupon release failed",
				zap.String("orderId", o.ID),
				zap.String("code", o.CouponCode),
				zap.Error(err))
		}
	}
	return uc.setStatus(ctx, o.ID, model.OrderStatusCancelled)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, orderID string) (*dto.OrderResult, error) {
	o, items, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.OrderResult{Order: o, Items: items, Discount: o.Discount}, nil
}

func (uc *orderUseCase) load(ctx context.Context, orderID string) (*model.Order, []model.OrderItem, error) {
	o, err := uc.orders.Get(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, ErrOrderNotFound
	}
	items, err := uc.items.Find(ctx, func(item model.OrderItem) bool {
		return item.OrderID == orderID
	})
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

func (uc *orderUseCase) setStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	return uc.orders.Update(ctx, orderID, store.Record{
		"status":    status,
		"updatedAt": time.Now(),
	})
}

func userID(input *dto.CreateOrderInput) string {
	if input.CashierID != "" {
		return input.CashierID
	}
	return input.UserID
}
