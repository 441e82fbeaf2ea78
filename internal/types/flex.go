package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexUint64 accepts either a JSON number or a numeric JSON string. Form
// clients routinely stringify ids, so request payloads use this for id
// fields instead of plain uint64.
type FlexUint64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexUint64(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		val, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexUint64: invalid uint64 string %q: %w", s, err)
		}
		*f = FlexUint64(val)
		return nil
	}

	return fmt.Errorf("FlexUint64: expected number or numeric string")
}

// MarshalJSON implements json.Marshaler.
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts back to uint64.
func (f FlexUint64) Uint64() uint64 {
	return uint64(f)
}

// FlexList accepts either a single JSON value or a JSON array of values.
// Used for message receivers, where clients send one id or a list.
type FlexList[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = FlexList[T](slice)
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}

// Slice converts back to []T.
func (f FlexList[T]) Slice() []T {
	return []T(f)
}
