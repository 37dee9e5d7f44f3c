package dto

import (
	"time"

	"github.com/oybekdev/shopcore/internal/model"
)

type CreateCouponInput struct {
	Code         string
	Discount     float64
	DiscountType model.DiscountType
	ValidFrom    time.Time
	ValidUntil   time.Time
	MinPurchase  float64
	MaxDiscount  float64
	OneTimeUse   bool
}

type RedeemInput struct {
	Code       string
	UserID     string
	OrderTotal float64
}

type RedeemResult struct {
	Coupon   *model.Coupon
	Discount float64 // absolute amount taken off the order total
}
