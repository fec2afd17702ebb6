package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"eterno-store/internal/ai"
	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/config"
	"eterno-store/internal/export"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const moduleName = "handlers"

// Handler holds the services behind every route.
type Handler struct {
	cfg      config.Config
	db       *gorm.DB
	redis    *redis.Client
	tokens   *auth.Manager
	shop     *shop.Service
	reports  *reports.Service
	snapshot *export.Snapshotter
	agent    *ai.Agent
	logger   *logrus.Logger
	instance string
}

type Deps struct {
	Config   config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Tokens   *auth.Manager
	Shop     *shop.Service
	Reports  *reports.Service
	Snapshot *export.Snapshotter
	Agent    *ai.Agent
	Logger   *logrus.Logger
	Instance string
}

func New(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		cfg:      d.Config,
		db:       d.DB,
		redis:    d.Redis,
		tokens:   d.Tokens,
		shop:     d.Shop,
		reports:  d.Reports,
		snapshot: d.Snapshot,
		agent:    d.Agent,
		logger:   logger,
		instance: d.Instance,
	}
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindConflict:     http.StatusConflict,
}

// fail writes err as the JSON error envelope. Internal errors are logged and
// reported with their public message only.
func (h *Handler) fail(c *gin.Context, funcName string, err error) {
	status, ok := statusByKind[apperr.KindOf(err)]
	msg := err.Error()
	if !ok {
		status = http.StatusInternalServerError
		cause := err
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Message != "" {
			msg = ae.Message
			if ae.Err != nil {
				cause = fmt.Errorf("%s: %w", ae.Message, ae.Err)
			}
		} else {
			msg = "Something went wrong. Please try again."
		}
		config.LogError(h.logger, moduleName, funcName, c.Request.URL.Path, c.GetString("requestID"), cause)
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func (h *Handler) bindJSON(c *gin.Context, funcName string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, funcName, apperr.FromBinding(err))
		return false
	}
	return true
}

func ok(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
