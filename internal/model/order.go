package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type OrderSource string

const (
	OrderSourceOnline   OrderSource = "ONLINE"
	OrderSourcePOS      OrderSource = "POS"
	OrderSourceTelegram OrderSource = "TELEGRAM"
)

type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId,omitempty"`
	OrderNumber   string      `json:"orderNumber"`
	Status        OrderStatus `json:"status"`
	Source        OrderSource `json:"source"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	CouponCode    string      `json:"couponCode,omitempty"`
	Discount      float64     `json:"discount,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}
