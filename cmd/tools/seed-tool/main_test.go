package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"mergington-activities/pkg/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddActivity_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "seed.json")

	err := addActivity(path, seed.Activity{
		Name:            "Robotics Club",
		Description:     "Build and program robots",
		Schedule:        "Mondays, 4:00 PM - 5:30 PM",
		MaxParticipants: 14,
		Participants:    []string{},
	})
	require.NoError(t, err)

	file, err := seed.Load(path)
	require.NoError(t, err)
	require.Len(t, file.Activities, 1)
	assert.Equal(t, seed.CurrentVersion, file.Version)
	assert.NotEmpty(t, file.LastUpdated)
}

func TestAddActivity_RejectsDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeSeed(path, seed.Default()))

	err := addActivity(path, seed.Activity{Name: "Chess Club", Description: "d", Schedule: "s", MaxParticipants: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdateActivity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeSeed(path, seed.Default()))

	require.NoError(t, updateActivity(path, "Chess Club", "max", "16"))
	require.NoError(t, updateActivity(path, "Chess Club", "schedule", "Fridays, 4:00 PM - 5:30 PM"))

	file, err := seed.Load(path)
	require.NoError(t, err)
	chess, ok := file.Find("Chess Club")
	require.True(t, ok)
	assert.Equal(t, 16, chess.MaxParticipants)
	assert.Equal(t, "Fridays, 4:00 PM - 5:30 PM", chess.Schedule)
}

func TestUpdateActivity_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeSeed(path, seed.Default()))

	tests := []struct {
		name, activity, field, value, want string
	}{
		{"unknown activity", "Knitting", "max", "3", "not found"},
		{"unknown field", "Chess Club", "color", "blue", "unknown field"},
		{"bad max", "Chess Club", "max", "zero", "invalid max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := updateActivity(path, tt.activity, tt.field, tt.value)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeSeed(path, seed.Default()))

	count, err := validateSeed(path)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Default().Activities), count)

	var out bytes.Buffer
	require.NoError(t, listActivities(path, &out))
	assert.Contains(t, out.String(), "Chess Club")
	assert.Contains(t, out.String(), " 2/12 ")
}
