package helper

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const RequestIdKey = "X-Request-Id"

// GenRequestID produces a sortable request identifier: millisecond timestamp
// plus random suffix.
func GenRequestID() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// MessageWithRequestId appends the request id to a user-facing message so
// callers can quote it in support requests.
func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return fmt.Sprintf("%s (request id: %s)", message, id)
}

func GetTimestamp() int64 {
	return time.Now().Unix()
}
