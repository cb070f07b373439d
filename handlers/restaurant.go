package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
)

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// GetMyRestaurants returns the owner's restaurants with every product,
// unavailable ones included.
func (h *Handler) GetMyRestaurants(c *gin.Context) {
	restaurants, err := h.catalog.RestaurantsByOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

func (h *Handler) SetProductAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.catalog.SetProductAvailability(c.Request.Context(), middleware.Actor(c), c.Param("id"), *req.Available)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}
