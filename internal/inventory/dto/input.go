package dto

import "github.com/oybekdev/shopcore/internal/model"

type StockChangeInput struct {
	ProductID string
	Quantity  int
	Reason    model.MovementReason
	UserID    string
	OrderID   string
}

type AdjustInventoryInput struct {
	ProductID      string
	Size           string
	QuantityChange int
	Reason         model.MovementReason
	UserID         string
}

type MovementFilters struct {
	ProductID string
	OrderID   string
	Reason    model.MovementReason
	Limit     int
}
