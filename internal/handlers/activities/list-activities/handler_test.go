package listactivities

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRegistry struct {
	activities models.ActivityMap
}

func (m *mockRegistry) List(context.Context) models.ActivityMap {
	return m.activities
}

func setupRouter(t *testing.T, reg Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(Method, Route, NewHandler(reg, logger.NewTestLogger(t)).Handle)
	return router
}

func TestHandler_ListActivities(t *testing.T) {
	reg := &mockRegistry{activities: models.ActivityMap{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
	}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	setupRouter(t, reg).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"Chess Club": {
			"description": "Learn strategies and compete in chess tournaments",
			"schedule": "Fridays, 3:30 PM - 5:00 PM",
			"max_participants": 12,
			"participants": ["michael@mergington.edu", "daniel@mergington.edu"]
		}
	}`, w.Body.String())
}

func TestHandler_EmptyRosterIsArray(t *testing.T) {
	reg := &mockRegistry{activities: models.ActivityMap{
		"Art Club": {Description: "d", Schedule: "s", MaxParticipants: 5, Participants: []string{}},
	}}

	w := httptest.NewRecorder()
	setupRouter(t, reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/activities", nil))

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{}, body["Art Club"]["participants"])
}
