package handlers

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON member was present and whether it was null,
// so partial updates can tell "leave as is" from "clear".
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}
