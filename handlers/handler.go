package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/repository"
	"food-ordering/services"
	"food-ordering/statemachine"
)

type Deps struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Coupons  *services.CouponService
	Orders   *services.OrderService
	Database *repository.DatabaseRepository
	Tokens   *middleware.Tokens
}

// Handler serves every HTTP endpoint on top of the services.
type Handler struct {
	auth     *services.AuthService
	catalog  *services.CatalogService
	cart     *services.CartService
	coupons  *services.CouponService
	orders   *services.OrderService
	database *repository.DatabaseRepository
	tokens   *middleware.Tokens
}

func New(d Deps) *Handler {
	return &Handler{
		auth:     d.Auth,
		catalog:  d.Catalog,
		cart:     d.Cart,
		coupons:  d.Coupons,
		orders:   d.Orders,
		database: d.Database,
		tokens:   d.Tokens,
	}
}

// respondError maps domain errors onto status codes.
func respondError(c *gin.Context, err error) {
	var (
		verr *models.ValidationError
		terr *models.TransitionError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &terr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             err.Error(),
			"current_status":    terr.From,
			"valid_next_states": statemachine.Describe(terr.From),
		})
	case errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrInvalidCoupon),
		errors.Is(err, models.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to do this"})
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrRestaurantNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
