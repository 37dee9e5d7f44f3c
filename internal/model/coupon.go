package model

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

type Coupon struct {
	ID           string       `json:"id"`
	Code         string       `json:"code"`
	Discount     float64      `json:"discount"`
	DiscountType DiscountType `json:"discountType"`
	ValidFrom    time.Time    `json:"validFrom"`
	ValidUntil   time.Time    `json:"validUntil"`
	MinPurchase  float64      `json:"minPurchase,omitempty"`
	MaxDiscount  float64      `json:"maxDiscount,omitempty"`
	OneTimeUse   bool         `json:"oneTimeUse"`
	Used         bool         `json:"used"`
	UsedBy       string       `json:"usedBy,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
