package repository

import (
	"bytes"
	"encoding/json"

	"taskmaster/internal/logger"

	"github.com/google/uuid"
)

// decodeList reads a stored JSON list of strings. Anything that is not a
// list of strings degrades to an empty list so legacy rows stay readable.
func decodeList(raw []byte, field string, id uuid.UUID) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("stored list is not a list of strings, returning empty list",
			"task_id", id, "field", field, "error", err)
		return []string{}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func encodeList(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return []byte("[]")
	}
	return b
}
