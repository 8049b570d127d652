// internal/model/optional.go
package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional is a field of a partial update. Present is false when the key was
// missing from the request; Null is true when it was sent as JSON null.
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// IsSet reports whether the field should be written. Absent and null both
// leave the stored column unchanged.
func (o Optional[T]) IsSet() bool {
	return o.Present && !o.Null
}

// UnmarshalJSON reads a blank string in a timestamp field as null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	data = bytes.TrimSpace(data)
	_, isTime := any(o.Value).(time.Time)
	if bytes.Equal(data, []byte("null")) || (isTime && bytes.Equal(data, []byte(`""`))) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
