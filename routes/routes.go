package routes

import (
	"github.com/gin-gonic/gin"

	"food-ordering/handlers"
	"food-ordering/middleware"
	"food-ordering/models"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, tokens *middleware.Tokens, sessions middleware.Sessions) {
	r.GET("/health", h.Health)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/products/:id", h.GetProduct)

		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(tokens, sessions))
	{
		auth.GET("/profile", h.GetProfile)
		auth.POST("/auth/logout", h.Logout)

		// Any signed-in user may shop.
		auth.GET("/cart", h.GetCart)
		auth.DELETE("/cart", h.ClearCart)
		auth.POST("/cart/items/:productId", h.AddCartItem)
		auth.POST("/cart/items/:productId/decrement", h.DecrementCartItem)
		auth.DELETE("/cart/items/:productId", h.RemoveCartItem)
		auth.PUT("/cart/coupon", h.ApplyCoupon)
		auth.DELETE("/cart/coupon", h.RemoveCoupon)
		auth.POST("/checkout", h.Checkout)

		auth.GET("/orders", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrderDetail)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	owner := r.Group("/api/owner")
	owner.Use(middleware.AuthRequired(tokens, sessions), middleware.RoleRequired(models.RoleOwner, models.RoleAdmin))
	{
		owner.GET("/restaurants", h.GetMyRestaurants)
		owner.PUT("/products/:id/availability", h.SetProductAvailability)
		owner.GET("/orders", h.GetRestaurantOrders)
		owner.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	// ── Driver routes ──────────────────────────────────────────────
	driver := r.Group("/api/driver")
	driver.Use(middleware.AuthRequired(tokens, sessions), middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/orders", h.GetMyDeliveries)
		driver.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(tokens, sessions), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.PUT("/orders/:id/driver", h.AdminAssignDriver)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.POST("/reset", h.AdminReset)
	}
}
