package dto

import "github.com/oybekdev/shopcore/internal/model"

type OrderItemInput struct {
	ProductID string
	Size      string
	Quantity  int
}

type CreateOrderInput struct {
	UserID        string
	CashierID     string
	Source        model.OrderSource
	PaymentMethod string
	CouponCode    string
	Items         []OrderItemInput
}

type OrderResult struct {
	Order    *model.Order
	Items    []model.OrderItem
	Discount float64
}
