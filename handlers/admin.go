package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
	"food-ordering/models"
)

type AssignDriverRequest struct {
	DriverID string `json:"driverId"`
}

// AdminGetAllOrders returns all orders plus the dashboard summary (admin only)
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	ctx := c.Request.Context()
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status filter: " + string(status)})
		return
	}
	orders, err := h.orders.AllOrders(ctx, status)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.orders.Summary(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	drivers, err := h.catalog.ListDrivers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
		"drivers":       drivers,
	})
}

// AdminAssignDriver sets or clears the driver of an order (admin only)
func (h *Handler) AdminAssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.AssignDriver(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Driver assigned"
	if req.DriverID == "" {
		message = "Driver unassigned"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "order": order})
}

// AdminGetAllUsers returns all users (admin only)
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	users, err := h.catalog.ListUsers(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminReset wipes the store; the next request re-seeds the demo data.
func (h *Handler) AdminReset(c *gin.Context) {
	if err := h.database.Reset(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	middleware.Logger(c).Info("admin_reset", "store reset by admin", map[string]any{"actor_id": middleware.GetUserID(c)})
	c.JSON(http.StatusOK, gin.H{"message": "Store reset to demo data"})
}
