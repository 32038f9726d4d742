package signupactivity

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"
	"mergington-activities/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type mockRegistry struct {
	enrolled  []string
	enrollErr error
}

func (m *mockRegistry) Enroll(_ context.Context, name, email string) error {
	if m.enrollErr != nil {
		return m.enrollErr
	}
	m.enrolled = append(m.enrolled, name+"|"+email)
	return nil
}

func (m *mockRegistry) Get(_ context.Context, name string) (models.Activity, error) {
	return models.Activity{Schedule: "Tuesdays, 5:00 PM - 6:30 PM"}, nil
}

type mockNotifier struct {
	notify.Noop
	events []notify.Event
	err    error
}

func (m *mockNotifier) ParticipantEnrolled(_ context.Context, event notify.Event) error {
	m.events = append(m.events, event)
	return m.err
}

// ==========================
// Test Helper Functions
// ==========================

func setupRouter(t *testing.T, reg Registry, n notify.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(Method, Route, NewHandler(reg, n, logger.NewTestLogger(t)).Handle)
	return router
}

func doRequest(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))
	return w
}

// ==========================
// Tests
// ==========================

func TestHandler_Signup_Success(t *testing.T) {
	reg := &mockRegistry{}
	n := &mockNotifier{}
	router := setupRouter(t, reg, n)

	w := doRequest(router, "/activities/Basketball%20Team/signup?email=test@mergington.edu")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Signed up test@mergington.edu for Basketball Team"}`, w.Body.String())
	assert.Equal(t, []string{"Basketball Team|test@mergington.edu"}, reg.enrolled)

	require.Len(t, n.events, 1)
	assert.Equal(t, notify.EventParticipantEnrolled, n.events[0].Type)
	assert.Equal(t, "Basketball Team", n.events[0].Activity)
	assert.Equal(t, "Tuesdays, 5:00 PM - 6:30 PM", n.events[0].Schedule)
}

func TestHandler_Signup_ActivityNotFound(t *testing.T) {
	reg := &mockRegistry{enrollErr: errors.NewActivityNotFoundError("Knitting")}
	n := &mockNotifier{}

	w := doRequest(setupRouter(t, reg, n), "/activities/Knitting/signup?email=test@mergington.edu")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Activity not found"}`, w.Body.String())
	assert.Empty(t, n.events)
}

func TestHandler_Signup_MissingEmail(t *testing.T) {
	reg := &mockRegistry{}

	w := doRequest(setupRouter(t, reg, nil), "/activities/Chess%20Club/signup")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":"email query parameter is required"}`, w.Body.String())
	assert.Empty(t, reg.enrolled)
}

func TestHandler_Signup_StoreFailure(t *testing.T) {
	reg := &mockRegistry{enrollErr: errors.NewRegistryStoreFailedError("Chess Club", stderrors.New("connection refused"))}

	w := doRequest(setupRouter(t, reg, nil), "/activities/Chess%20Club/signup?email=a@mergington.edu")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "detail")
}

func TestHandler_Signup_NotificationFailureIgnored(t *testing.T) {
	reg := &mockRegistry{}
	n := &mockNotifier{err: errors.NewNotificationSendFailedError("email", stderrors.New("throttled"))}

	w := doRequest(setupRouter(t, reg, n), "/activities/Chess%20Club/signup?email=a@mergington.edu")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, n.events, 1)
}
