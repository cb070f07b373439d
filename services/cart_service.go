package services

import (
	"context"

	"food-ordering/coupon"
	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/money"
	"food-ordering/pricing"
	"food-ordering/repository"
)

// CartView is a priced snapshot of a user's cart.
type CartView struct {
	Lines     []models.CartLine `json:"lines"`
	ItemCount int               `json:"itemCount"`
	Quote     pricing.Quote     `json:"quote"`
}

type CartService struct {
	db      *repository.DatabaseRepository
	carts   *repository.CartRepository
	coupons *repository.CouponRepository
	log     logger.Logger
}

func NewCartService(db *repository.DatabaseRepository, carts *repository.CartRepository, coupons *repository.CouponRepository, log logger.Logger) *CartService {
	return &CartService{db: db, carts: carts, coupons: coupons, log: log}
}

// AddItem adds one unit of productID. An existing line keeps the price it
// was first added at; a new line takes the current catalog price.
func (s *CartService) AddItem(ctx context.Context, userID, productID string) (models.CartLine, error) {
	var line models.CartLine
	_, err := s.carts.Update(ctx, userID, func(cart models.Cart) error {
		db, err := s.db.Load(ctx)
		if err != nil {
			return err
		}
		p, ok := db.FindProduct(productID)
		if !ok {
			return models.ErrProductNotFound
		}
		if !p.Available {
			return models.ErrProductUnavailable
		}
		r, ok := db.FindRestaurant(p.RestaurantID)
		if !ok {
			return models.ErrRestaurantNotFound
		}

		if existing, ok := cart[productID]; ok {
			existing.Quantity++
			line = existing
		} else {
			line = models.CartLine{
				ProductID:      p.ID,
				Name:           p.Name,
				Price:          p.Price,
				Quantity:       1,
				RestaurantID:   r.ID,
				RestaurantName: r.Name,
			}
		}
		cart[productID] = line
		return nil
	})
	if err != nil {
		return models.CartLine{}, err
	}
	s.log.Debug("cart_add", "item added to cart", map[string]any{
		"user_id": userID, "product_id": productID, "quantity": line.Quantity,
	})
	return line, nil
}

// DecrementItem removes one unit; the line disappears at zero. A missing
// line is left alone.
func (s *CartService) DecrementItem(ctx context.Context, userID, productID string) error {
	_, err := s.carts.Update(ctx, userID, func(cart models.Cart) error {
		line, ok := cart[productID]
		if !ok {
			return nil
		}
		line.Quantity--
		if line.Quantity <= 0 {
			delete(cart, productID)
		} else {
			cart[productID] = line
		}
		return nil
	})
	return err
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.carts.Update(ctx, userID, func(cart models.Cart) error {
		delete(cart, productID)
		return nil
	})
	return err
}

// Clear empties the cart. The applied coupon is kept.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.carts.Clear(ctx, userID)
}

func (s *CartService) Subtotal(ctx context.Context, userID string) (money.Money, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return money.Zero, err
	}
	return cart.Subtotal(), nil
}

func (s *CartService) ItemCount(ctx context.Context, userID string) (int, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

// View prices the cart against the coupon currently applied, if it still
// resolves.
func (s *CartService) View(ctx context.Context, userID string) (CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	applied, err := s.coupons.Load(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{
		Lines:     cart.Lines(),
		ItemCount: cart.ItemCount(),
		Quote:     pricing.Price(cart, refreshCoupon(applied)),
	}, nil
}

// refreshCoupon re-resolves a stored coupon against the current table so a
// retired code stops discounting.
func refreshCoupon(stored *models.AppliedCoupon) *models.AppliedCoupon {
	if stored == nil {
		return nil
	}
	c, err := coupon.Resolve(stored.Code)
	if err != nil {
		return nil
	}
	return &c
}
