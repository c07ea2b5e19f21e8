package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_EmitsStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	NewStdoutAuditLogger().Log(context.Background(), AuditLog{
		Component: "api",
		Action:    "SERVER_SHUTDOWN",
		Message:   "Portal API shutting down",
		Meta:      map[string]any{"signal": "terminated", "uptime": "3h"},
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "audit", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	assert.Equal(t, "api", fields["component"])
	assert.Equal(t, "SERVER_SHUTDOWN", fields["action"])
	assert.Equal(t, "Portal API shutting down", fields["message"])
}
