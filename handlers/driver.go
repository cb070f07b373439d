package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
)

// GetMyDeliveries returns orders assigned to the calling driver
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	orders, err := h.orders.OrdersForDriver(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
