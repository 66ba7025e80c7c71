package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Blob is a JSON payload the client passes through without interpreting,
// such as analytics aggregates or notification settings.
type Blob []byte

// MarshalJSON implements json.Marshaler. A nil Blob encodes as null.
func (b Blob) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("null"), nil
	}
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler by copying the raw payload.
func (b *Blob) UnmarshalJSON(data []byte) error {
	if b == nil {
		return fmt.Errorf("model.Blob: UnmarshalJSON on nil pointer")
	}
	*b = append((*b)[:0], data...)
	return nil
}

// IsZero reports whether the blob is absent or JSON null.
func (b Blob) IsZero() bool {
	trimmed := bytes.TrimSpace(b)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the payload into v.
func (b Blob) Decode(v any) error {
	if b.IsZero() {
		return fmt.Errorf("decode blob: empty payload")
	}
	return json.Unmarshal(b, v)
}

// Field returns the raw value of a top-level object key.
// It returns false if the blob is not an object or the key is absent.
func (b Blob) Field(name string) (Blob, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, false
	}
	raw, ok := obj[name]
	if !ok {
		return nil, false
	}
	return Blob(raw), true
}

// Number returns a top-level numeric field, or false if absent or not a number.
func (b Blob) Number(name string) (float64, bool) {
	raw, ok := b.Field(name)
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// String returns the compact JSON text of the blob.
func (b Blob) String() string {
	if b.IsZero() {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(b)
	}
	return buf.String()
}
