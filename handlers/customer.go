package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
	"food-ordering/models"
)

type CouponRequest struct {
	Code string `json:"code"`
}

// GetCart returns the caller's cart priced with the applied coupon
func (h *Handler) GetCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK, nil)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	line, err := h.cart.AddItem(c.Request.Context(), middleware.GetUserID(c), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, gin.H{"line": line})
}

func (h *Handler) DecrementCartItem(c *gin.Context) {
	if err := h.cart.DecrementItem(c.Request.Context(), middleware.GetUserID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, nil)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	if err := h.cart.RemoveItem(c.Request.Context(), middleware.GetUserID(c), c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, nil)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, nil)
}

// ApplyCoupon stores a coupon for the caller; an empty code removes it.
func (h *Handler) ApplyCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.coupons.Apply(c.Request.Context(), middleware.GetUserID(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	message := "Coupon applied"
	if res.Cleared {
		message = "Coupon removed"
	}
	h.respondCart(c, http.StatusOK, gin.H{"message": message})
}

func (h *Handler) RemoveCoupon(c *gin.Context) {
	if err := h.coupons.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK, gin.H{"message": "Coupon removed"})
}

func (h *Handler) respondCart(c *gin.Context, status int, extra gin.H) {
	ctx := c.Request.Context()
	uid := middleware.GetUserID(c)
	view, err := h.cart.View(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	applied, err := h.coupons.Current(ctx, uid)
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"cart": view, "coupon": applied}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// Checkout turns the caller's cart into an order
func (h *Handler) Checkout(c *gin.Context) {
	var form models.CustomerInfo
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.Checkout(c.Request.Context(), middleware.GetUserID(c), form)
	switch {
	case errors.Is(err, models.ErrCartNotCleared):
		middleware.Logger(c).Error("checkout_partial", "order placed, cart left populated", map[string]any{"order_id": order.ID}, err)
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"warning": "Your cart could not be emptied; remove the items before ordering again",
			"order":   order,
		})
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// GetMyOrders returns all orders for the logged-in customer
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.OrdersForCustomer(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one order the caller is allowed to see
func (h *Handler) GetOrderDetail(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
