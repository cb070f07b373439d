package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
	"food-ordering/models"
)

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// GetRestaurantOrders returns orders containing the owner's products
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	orders, err := h.orders.OrdersForOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// UpdateOrderStatus is shared by the owner, driver and admin routes; the
// order service decides which orders the caller may touch.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated to " + string(order.Status),
		"order":   order,
	})
}
