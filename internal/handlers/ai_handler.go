package handlers

import (
	"errors"
	"net/http"

	"eterno-store/internal/ai"
	"eterno-store/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Message is required"})
		return
	}

	reply, err := h.agent.Ask(c.Request.Context(), middleware.CurrentPrincipal(c), req.Message)
	if errors.Is(err, ai.ErrDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "The assistant is not configured"})
		return
	}
	if err != nil {
		h.fail(c, "AskAI", err)
		return
	}

	ok(c, gin.H{"reply": reply})
}
