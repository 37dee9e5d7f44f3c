package model

import "time"

// Inventory tracks the quantity on hand for one (product, size) pair.
// Uniqueness of the pair is enforced by the ledger at creation time,
// not by the store.
type Inventory struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MovementReason classifies a stock mutation for the audit trail.
type MovementReason string

const (
	ReasonPurchase         MovementReason = "purchase"
	ReasonManualAdjustment MovementReason = "manual_adjustment"
	ReasonReturn           MovementReason = "return"
	ReasonDamage           MovementReason = "damage"
)

// StockMovement is an immutable audit record of one stock change.
// Movements are only ever created, never updated or deleted.
type StockMovement struct {
	ID          string         `json:"id"`
	ProductID   string         `json:"productId"`
	Delta       int            `json:"delta"`
	Reason      MovementReason `json:"reason"`
	StockBefore int            `json:"stockBefore"`
	StockAfter  int            `json:"stockAfter"`
	OrderID     string         `json:"orderId,omitempty"`
	UserID      string         `json:"userId"`
	CreatedAt   time.Time      `json:"createdAt"`
}
