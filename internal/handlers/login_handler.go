package handlers

import (
	"net/http"

	"eterno-store/internal/middleware"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and returns a JWT with the caller's role.
func (h *Handler) Login(c *gin.Context) {
	var input LoginRequest
	if !h.bindJSON(c, "Login", &input) {
		return
	}

	user, err := h.shop.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.fail(c, "Login", err)
		return
	}

	token, err := h.tokens.GenerateToken(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	ok(c, gin.H{
		"token":    token,
		"role":     user.Role,
		"username": user.Username,
	})
}

// Register opens a customer account. Admin accounts are only seeded.
func (h *Handler) Register(c *gin.Context) {
	var input RegisterRequest
	if !h.bindJSON(c, "Register", &input) {
		return
	}

	user, err := h.shop.Register(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		h.fail(c, "Register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Account created successfully!", "user": user})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.shop.GetUser(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "Me", err)
		return
	}
	ok(c, gin.H{"user": user})
}
