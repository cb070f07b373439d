package repository

import (
	"context"
	"errors"
	"fmt"

	"food-ordering/logger"
	"food-ordering/models"
)

// CartRepository stores one cart document per user.
type CartRepository struct {
	docs *Documents
	log  logger.Logger
}

func NewCartRepository(docs *Documents, log logger.Logger) *CartRepository {
	return &CartRepository{docs: docs, log: log}
}

// Lock enters the critical section of userID's cart. Load, Save and Delete
// assume the caller holds it.
func (r *CartRepository) Lock(userID string) func() {
	return r.docs.Lock(CartKey(userID))
}

// Load returns the cart, or an empty one when it is missing or malformed.
func (r *CartRepository) Load(ctx context.Context, userID string) (models.Cart, error) {
	cart := models.Cart{}
	_, err := r.docs.read(ctx, CartKey(userID), &cart)
	if errors.Is(err, errMalformed) {
		r.log.Error("cart_malformed", "stored cart does not decode, starting empty", map[string]any{"user_id": userID}, err)
		return models.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		cart = models.Cart{}
	}
	for id, line := range cart {
		if line.Quantity <= 0 {
			delete(cart, id)
		}
	}
	return cart, nil
}

func (r *CartRepository) Save(ctx context.Context, userID string, cart models.Cart) error {
	if cart == nil {
		cart = models.Cart{}
	}
	if err := r.docs.write(ctx, CartKey(userID), cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.docs.remove(ctx, CartKey(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Get reads the cart outside of any critical section.
func (r *CartRepository) Get(ctx context.Context, userID string) (models.Cart, error) {
	return r.Load(ctx, userID)
}

// Update loads the cart, applies fn and saves it, all under the cart's lock.
// Nothing is saved when fn fails.
func (r *CartRepository) Update(ctx context.Context, userID string, fn func(cart models.Cart) error) (models.Cart, error) {
	unlock := r.Lock(userID)
	defer unlock()

	cart, err := r.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear removes the cart document under its lock.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	unlock := r.Lock(userID)
	defer unlock()
	return r.Delete(ctx, userID)
}
