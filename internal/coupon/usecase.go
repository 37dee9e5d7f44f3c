package coupon

import (
	"context"

	"github.com/oybekdev/shopcore/internal/coupon/dto"
	"github.com/oybekdev/shopcore/internal/model"
)

type UseCase interface {
	CreateCoupon(ctx context.Context, input *dto.CreateCouponInput) (*model.Coupon, error)
	// Redeem validates the coupon against the order total and, for one-time
	// coupons, marks it used. Validation failures are sentinel errors.
	Redeem(ctx context.Context, input *dto.RedeemInput) (*dto.RedeemResult, error)
	// Release un-marks a one-time coupon after its order is cancelled.
	Release(ctx context.Context, code string) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}
