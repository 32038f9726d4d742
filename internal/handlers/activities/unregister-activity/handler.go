// Package unregisteractivity serves DELETE /activities/{activity_name}/signup.
package unregisteractivity

import (
	"context"
	"net/http"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/notify"

	"github.com/gin-gonic/gin"
)

const (
	Method    = http.MethodDelete
	Route     = "/activities/:activity_name/signup"
	Operation = "withdraw"
)

type Registry interface {
	Withdraw(ctx context.Context, name, email string) error
}

type Handler struct {
	registry Registry
	notifier notify.Notifier
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(registry Registry, notifier notify.Notifier, log logger.Logger) *Handler {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	log = log.WithFields(map[string]interface{}{"route": Route, "method": Method})
	return &Handler{
		registry: registry,
		notifier: notifier,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(c *gin.Context) {
	email, ok := c.GetQuery("email")
	if !ok {
		h.fail(c, errors.NewValidationError("email query parameter is required"))
		return
	}
	input := Input{ActivityName: c.Param("activity_name"), Email: email}

	ctx := c.Request.Context()
	if err := h.registry.Withdraw(ctx, input.ActivityName, input.Email); err != nil {
		h.fail(c, err)
		return
	}
	metrics.UnregistrationsTotal.WithLabelValues(input.ActivityName).Inc()

	event := notify.NewEvent(notify.EventParticipantWithdrawn, input.ActivityName, input.Email)
	if err := h.notifier.ParticipantWithdrawn(ctx, event); err != nil {
		h.logger.Warn("unregister notification not delivered", map[string]interface{}{
			"activity": input.ActivityName,
			"error":    err,
		})
	}

	c.JSON(http.StatusOK, newOutput(input))
}

func (h *Handler) fail(c *gin.Context, err error) {
	metrics.OperationFailures.WithLabelValues(Operation, string(errors.Normalize(err).Code)).Inc()
	h.errors.Handle(c, err)
}
