package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-ordering/middleware"
	"food-ordering/models"
	"food-ordering/services"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a customer account
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.auth.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueToken(c, http.StatusCreated, "Registration successful", user)
}

// Login authenticates a user and returns a JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.issueToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handler) issueToken(c *gin.Context, status int, message string, user models.UserRef) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{"message": message, "token": token, "user": user})
}

// Logout ends the caller's session; their tokens stop working
func (h *Handler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the logged-in user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.auth.FindUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
