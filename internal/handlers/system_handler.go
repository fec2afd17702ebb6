package handlers

import (
	"context"
	"net/http"
	"time"

	"eterno-store/internal/middleware"

	"github.com/gin-gonic/gin"
)

const pingTimeout = 2 * time.Second

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online", "instance": h.instance})
}

// SystemStatus reports which backing services this instance is talking to.
func (h *Handler) SystemStatus(c *gin.Context) {
	if err := middleware.CurrentPrincipal(c).RequireAdmin(); err != nil {
		h.fail(c, "SystemStatus", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	dbStatus := "online"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "offline"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "online"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "offline"
		}
	}

	snapshot := ""
	if h.snapshot != nil {
		snapshot = h.snapshot.Path()
	}

	ok(c, gin.H{
		"instance_id": h.instance,
		"database":    dbStatus,
		"redis":       redisStatus,
		"kafka":       len(h.cfg.KafkaBrokers) > 0,
		"assistant":   h.agent.Enabled(),
		"export_path": snapshot,
		"checked_at":  h.reports.Formatter().Display(time.Now()),
	})
}
