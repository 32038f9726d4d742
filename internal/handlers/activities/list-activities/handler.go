// Package listactivities serves GET /activities.
package listactivities

import (
	"context"
	"net/http"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	Method = http.MethodGet
	Route  = "/activities"
)

type Registry interface {
	List(ctx context.Context) models.ActivityMap
}

type Handler struct {
	registry Registry
	logger   logger.Logger
}

func NewHandler(registry Registry, log logger.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"route": Route}),
	}
}

func (h *Handler) Handle(c *gin.Context) {
	var output Output = h.registry.List(c.Request.Context())

	h.logger.Debug("activities listed", map[string]interface{}{
		"count": len(output),
	})
	c.JSON(http.StatusOK, output)
}
