package unregisteractivity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct {
	rosters map[string][]string
}

func (m *mockRegistry) Withdraw(_ context.Context, name, email string) error {
	roster, ok := m.rosters[name]
	if !ok {
		return errors.NewActivityNotFoundError(name)
	}
	for i, p := range roster {
		if p == email {
			m.rosters[name] = append(roster[:i:i], roster[i+1:]...)
			return nil
		}
	}
	return errors.NewParticipantNotFoundError(name, email)
}

type mockNotifier struct {
	notify.Noop
	events []notify.Event
}

func (m *mockNotifier) ParticipantWithdrawn(_ context.Context, event notify.Event) error {
	m.events = append(m.events, event)
	return nil
}

func setupRouter(t *testing.T, reg Registry, n notify.Notifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(Method, Route, NewHandler(reg, n, logger.NewTestLogger(t)).Handle)
	return router
}

func doRequest(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, target, nil))
	return w
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{rosters: map[string][]string{
		"Chess Club": {"michael@mergington.edu", "daniel@mergington.edu"},
	}}
}

func TestHandler_Unregister(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "enrolled participant",
			target:     "/activities/Chess%20Club/signup?email=michael@mergington.edu",
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Unregistered michael@mergington.edu from Chess Club"}`,
		},
		{
			name:       "unknown activity",
			target:     "/activities/Knitting/signup?email=michael@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"detail":"Activity not found"}`,
		},
		{
			name:       "participant not enrolled",
			target:     "/activities/Chess%20Club/signup?email=nobody@mergington.edu",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"detail":"Participant not found"}`,
		},
		{
			name:       "missing email",
			target:     "/activities/Chess%20Club/signup",
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"detail":"email query parameter is required"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(setupRouter(t, newMockRegistry(), nil), tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestHandler_Unregister_UpdatesRosterAndNotifies(t *testing.T) {
	reg := newMockRegistry()
	n := &mockNotifier{}

	w := doRequest(setupRouter(t, reg, n), "/activities/Chess%20Club/signup?email=michael@mergington.edu")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"daniel@mergington.edu"}, reg.rosters["Chess Club"])
	require.Len(t, n.events, 1)
	assert.Equal(t, notify.EventParticipantWithdrawn, n.events[0].Type)
	assert.Equal(t, "michael@mergington.edu", n.events[0].Email)
}

func TestHandler_Unregister_FailureDoesNotNotify(t *testing.T) {
	n := &mockNotifier{}

	w := doRequest(setupRouter(t, newMockRegistry(), n), "/activities/Chess%20Club/signup?email=nobody@mergington.edu")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, n.events)
}
