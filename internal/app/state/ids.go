package state

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewMessageID returns a chat message id unique within a session:
// the unix-millis timestamp plus a random suffix.
func NewMessageID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}
