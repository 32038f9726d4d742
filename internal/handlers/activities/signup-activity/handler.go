// Package signupactivity serves POST /activities/{activity_name}/signup.
package signupactivity

import (
	"context"
	"net/http"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"
	"mergington-activities/internal/models"
	"mergington-activities/internal/notify"

	"github.com/gin-gonic/gin"
)

const (
	Method    = http.MethodPost
	Route     = "/activities/:activity_name/signup"
	Operation = "enroll"
)

type Registry interface {
	Enroll(ctx context.Context, name, email string) error
	Get(ctx context.Context, name string) (models.Activity, error)
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
	log = log.WithFields(map[string]interface{}{"route": Route})
	return &Handler{
		registry: registry,
		notifier: notifier,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(c *gin.Context) {
	input, err := bindInput(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.registry.Enroll(ctx, input.ActivityName, input.Email); err != nil {
		h.fail(c, err)
		return
	}
	metrics.SignupsTotal.WithLabelValues(input.ActivityName).Inc()

	h.notify(ctx, input)

	c.JSON(http.StatusOK, newOutput(input))
}

func bindInput(c *gin.Context) (Input, error) {
	input := Input{ActivityName: c.Param("activity_name")}
	email, ok := c.GetQuery("email")
	if !ok {
		return input, errors.NewValidationError("email query parameter is required")
	}
	input.Email = email
	return input, nil
}

// notify is best effort: failures are logged by the notifier and never
// change the response.
func (h *Handler) notify(ctx context.Context, input Input) {
	event := notify.NewEvent(notify.EventParticipantEnrolled, input.ActivityName, input.Email)
	if activity, err := h.registry.Get(ctx, input.ActivityName); err == nil {
		event.Schedule = activity.Schedule
	}
	if err := h.notifier.ParticipantEnrolled(ctx, event); err != nil {
		h.logger.Warn("signup notification not delivered", map[string]interface{}{
			"activity": input.ActivityName,
			"error":    err,
		})
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	metrics.OperationFailures.WithLabelValues(Operation, string(errors.Normalize(err).Code)).Inc()
	h.errors.Handle(c, err)
}
