package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"activity": "Chess Club"}).
		Info("participant enrolled", map[string]interface{}{"email": "michael@mergington.edu"})

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "participant enrolled", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "Chess Club", ctx["activity"])
	assert.Equal(t, "michael@mergington.edu", ctx["email"])
}

func TestZapAdapter_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(errors.New("redis down")).Warn("store write failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "redis down", entries[0].ContextMap()["error"])
}

func TestNew_LevelFiltering(t *testing.T) {
	l := New("warn", "console", "stderr")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Error("ignored", map[string]interface{}{"k": "v"})
	})
}
