package services

import (
	"context"

	"food-ordering/coupon"
	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/repository"
)

// ApplyResult tells a caller whether a coupon was applied or the slot was
// cleared.
type ApplyResult struct {
	Cleared bool                  `json:"cleared"`
	Coupon  *models.AppliedCoupon `json:"coupon,omitempty"`
}

type CouponService struct {
	coupons *repository.CouponRepository
	log     logger.Logger
}

func NewCouponService(coupons *repository.CouponRepository, log logger.Logger) *CouponService {
	return &CouponService{coupons: coupons, log: log}
}

// Apply stores code for userID, replacing any previous coupon. A blank code
// clears the slot. An unknown code also clears it and returns
// models.ErrInvalidCoupon.
func (s *CouponService) Apply(ctx context.Context, userID, code string) (ApplyResult, error) {
	unlock := s.coupons.Lock(userID)
	defer unlock()

	if coupon.Normalize(code) == "" {
		if err := s.coupons.Delete(ctx, userID); err != nil {
			return ApplyResult{}, err
		}
		return ApplyResult{Cleared: true}, nil
	}

	applied, err := coupon.Resolve(code)
	if err != nil {
		if derr := s.coupons.Delete(ctx, userID); derr != nil {
			return ApplyResult{}, derr
		}
		s.log.Debug("coupon_rejected", "unknown coupon code", map[string]any{"user_id": userID, "code": code})
		return ApplyResult{Cleared: true}, err
	}
	if err := s.coupons.Save(ctx, userID, applied); err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{Coupon: &applied}, nil
}

// Current returns the applied coupon, or nil.
func (s *CouponService) Current(ctx context.Context, userID string) (*models.AppliedCoupon, error) {
	return s.coupons.Load(ctx, userID)
}

func (s *CouponService) Clear(ctx context.Context, userID string) error {
	unlock := s.coupons.Lock(userID)
	defer unlock()
	return s.coupons.Delete(ctx, userID)
}
