package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/internal/coupon"
	"github.com/oybekdev/shopcore/internal/coupon/dto"
	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/lock"
	"github.com/oybekdev/shopcore/pkg/logger"
)

const collectionCoupons = "coupons"

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponNotYet   = errors.New("coupon is not valid yet")
	ErrCouponExpired  = errors.New("coupon has expired")
	ErrCouponUsed     = errors.New("coupon has already been used")
	ErrMinPurchase    = errors.New("order total below coupon minimum purchase")
	ErrDuplicateCode  = errors.New("coupon code already exists")
)

type couponUseCase struct {
	coupons store.Collection[model.Coupon]
	locker  lock.Locker
	logger  logger.ZapLogger
}

func NewCouponUseCase(s *store.Store, locker lock.Locker, log logger.ZapLogger) coupon.UseCase {
	return &couponUseCase{
		coupons: store.NewCollection[model.Coupon](s, collectionCoupons),
		locker:  locker,
		logger:  log.Named("coupon"),
	}
}

func (uc *couponUseCase) CreateCoupon(ctx context.Context, input *dto.CreateCouponInput) (*model.Coupon, error) {
	existing, err := uc.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	now := time.Now()
	c := model.Coupon{
		ID:           uuid.New().String(),
		Code:         strings.ToUpper(strings.TrimSpace(input.Code)),
		Discount:     input.Discount,
		DiscountType: input.DiscountType,
		ValidFrom:    input.ValidFrom,
		ValidUntil:   input.ValidUntil,
		MinPurchase:  input.MinPurchase,
		MaxDiscount:  input.MaxDiscount,
		OneTimeUse:   input.OneTimeUse,
		Used:         false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return uc.coupons.Create(ctx, c)
}

// Redeem checks the validity window, minimum purchase and one-time-use flag,
// computes the discount and consumes one-time coupons. The check-then-mark
// sequence holds a per-code lock so two carts cannot both consume the same
// one-time coupon from this process group.
func (uc *couponUseCase) Redeem(ctx context.Context, input *dto.RedeemInput) (*dto.RedeemResult, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	value := uuid.New().String()
	key := "lock:coupon:" + code
	ok, err := uc.locker.AcquireLock(ctx, key, value, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another redemption is in flight; treat like a consumed coupon.
		return nil, ErrCouponUsed
	}
	defer func() {
		if err := uc.locker.ReleaseLock(context.WithoutCancel(ctx), key, value); err != nil {
			uc.logger.Warn("coupon lock release failed", zap.String("code", code), zap.Error(err))
		}
	}()

	c, err := uc.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCouponNotFound
	}

	now := time.Now()
	switch {
	case now.Before(c.ValidFrom):
		return nil, ErrCouponNotYet
	case now.After(c.ValidUntil):
		return nil, ErrCouponExpired
	case c.OneTimeUse && c.Used:
		return nil, ErrCouponUsed
	case c.MinPurchase > 0 && input.OrderTotal < c.MinPurchase:
		return nil, ErrMinPurchase
	}

	discount := c.Discount
	if c.DiscountType == model.DiscountPercentage {
		discount = input.OrderTotal * c.Discount / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	}
	if discount > input.OrderTotal {
		discount = input.OrderTotal
	}

	if c.OneTimeUse {
		updated, err := uc.coupons.Update(ctx, c.ID, store.Record{
			"used":      true,
			"usedBy":    input.UserID,
			"updatedAt": now,
		})
		if err != nil {
			return nil, err
		}
		c = updated
	}

	uc.logger.Info("coupon redeemed",
		zap.String("code", code),
		zap.Float64("discount", discount),
		zap.Bool("oneTimeUse", c.OneTimeUse))
	return &dto.RedeemResult{Coupon: c, Discount: discount}, nil
}

func (uc *couponUseCase) Release(ctx context.Context, code string) error {
	c, err := uc.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCouponNotFound
	}
	if !c.OneTimeUse || !c.Used {
		return nil
	}

	_, err = uc.coupons.Update(ctx, c.ID, store.Record{
		"used":      false,
		"usedBy":    "",
		"updatedAt": time.Now(),
	})
	return err
}

func (uc *couponUseCase) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return uc.coupons.FindOne(ctx, func(c model.Coupon) bool {
		return strings.EqualFold(c.Code, code)
	})
}
