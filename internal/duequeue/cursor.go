package duequeue

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/at-ishikawa/studykit/internal/apperr"
)

// pageCursor is the wire form of a pagination position. Callers see only the
// base64 string and must treat it as opaque.
type pageCursor struct {
	Time time.Time `json:"t"`
	ID   string    `json:"id"`
}

func encodeCursor(t time.Time, id string) string {
	raw, _ := json.Marshal(pageCursor{Time: t, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(encoded string) (pageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return pageCursor{}, apperr.Validationf("malformed cursor")
	}
	var cursor pageCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return pageCursor{}, apperr.Validationf("malformed cursor")
	}
	return cursor, nil
}
