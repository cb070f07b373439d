package repository

import (
	"context"
	"errors"
	"fmt"

	"food-ordering/logger"
	"food-ordering/models"
)

// CouponRepository stores the applied coupon of each user.
type CouponRepository struct {
	docs *Documents
	log  logger.Logger
}

func NewCouponRepository(docs *Documents, log logger.Logger) *CouponRepository {
	return &CouponRepository{docs: docs, log: log}
}

func (r *CouponRepository) Lock(userID string) func() {
	return r.docs.Lock(CouponKey(userID))
}

// Load returns nil when no coupon is applied or the document is malformed.
func (r *CouponRepository) Load(ctx context.Context, userID string) (*models.AppliedCoupon, error) {
	var c *models.AppliedCoupon
	_, err := r.docs.read(ctx, CouponKey(userID), &c)
	if errors.Is(err, errMalformed) {
		r.log.Error("coupon_malformed", "stored coupon does not decode, dropping it", map[string]any{"user_id": userID}, err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if c != nil && c.Code == "" {
		return nil, nil
	}
	return c, nil
}

func (r *CouponRepository) Save(ctx context.Context, userID string, c models.AppliedCoupon) error {
	if err := r.docs.write(ctx, CouponKey(userID), c); err != nil {
		return fmt.Errorf("save coupon: %w", err)
	}
	return nil
}

func (r *CouponRepository) Delete(ctx context.Context, userID string) error {
	if err := r.docs.remove(ctx, CouponKey(userID)); err != nil {
		return fmt.Errorf("clear coupon: %w", err)
	}
	return nil
}
