package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPayload(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	LogPayload(logger, "chat response", []byte(`{"action":"dance"}`))
	LogPayload(logger, "chat response", []byte(`not json`))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].ContextMap()["payload"], "\n  \"action\": \"dance\"")
	assert.Equal(t, "not json", entries[1].ContextMap()["payload"])

	quiet, quietLogs := observer.New(zapcore.InfoLevel)
	LogPayload(zap.New(quiet), "ignored", []byte(`{}`))
	assert.Zero(t, quietLogs.Len())
}
