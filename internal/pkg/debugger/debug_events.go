package debugger

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
)

// LogPayload logs a raw upstream payload at debug level, pretty-printed when it is JSON.
func LogPayload(logger *zap.Logger, msg string, payload []byte) {
	if logger == nil || !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err == nil {
		logger.Debug(msg, zap.String("payload", pretty.String()))
		return
	}
	logger.Debug(msg, zap.ByteString("payload", payload))
}
