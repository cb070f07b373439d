package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/coupon"
	"food-ordering/models"
	"food-ordering/pricing"
	"food-ordering/services"
	"food-ordering/statemachine"
)

// ListRestaurants returns restaurants with their available products (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	ctx := c.Request.Context()
	restaurants, err := h.catalog.ListRestaurants(ctx, services.RestaurantFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"categories":  categories,
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant and its menu
func (h *Handler) GetRestaurant(c *gin.Context) {
	menu, err := h.catalog.FindRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": menu})
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, restaurant, err := h.catalog.FindProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product":         product,
		"restaurant_id":   restaurant.ID,
		"restaurant_name": restaurant.Name,
	})
}

// GetStateMachineInfo returns the order lifecycle and pricing rules
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range models.AllStatuses {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"roles": gin.H{
			"admin":    "any status change on any order, driver assignment",
			"owner":    "status changes on orders containing their restaurants' products",
			"driver":   "status changes on orders assigned to them",
			"customer": "read only",
		},
		"delivery_fee": gin.H{
			"base":      pricing.BaseDeliveryFee,
			"free_over": pricing.FreeOverThreshold,
		},
		"coupons":     coupon.Codes(),
		"description": "Food Ordering Order Lifecycle State Machine",
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Food Ordering API",
		"version": "2.0.0",
	})
}
