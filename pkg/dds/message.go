package dds

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Message is a positional wire message: an ordered array of scalars with no field names.
// Which profile variant it holds is known out of band, from the stream kind.
type Message []any

// ParseMessage decodes a JSON array into a Message. Numbers are kept as json.Number
// so integer fields are read without float rounding.
func ParseMessage(data []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, decodeError(err, "invalid message")
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, decodeError(nil, "message must be an array, got %T", raw)
	}
	return Message(arr), nil
}

// MarshalJSON encodes the message as a JSON array; a nil message encodes as [].
func (m Message) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]any(m))
}

// VerifyExhausted fails unless cursor sits exactly at the end of msg, i.e. every field
// was consumed and nothing trails the known variant.
func VerifyExhausted(msg Message, cursor int) error {
	if cursor != len(msg) {
		return decodeError(nil, "expected end of message at index %d, message has %d fields", cursor, len(msg))
	}
	return nil
}

// int16Value converts a decoded scalar to int16, rejecting non-integers and
// out-of-range values.
func int16Value(v any) (int16, error) {
	var n int64
	switch x := v.(type) {
	case int16:
		return x, nil
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint:
		if x > math.MaxInt16 {
			return 0, fmt.Errorf("value %d out of int16 range", x)
		}
		n = int64(x)
	case uint64:
		if x > math.MaxInt16 {
			return 0, fmt.Errorf("value %d out of int16 range", x)
		}
		n = int64(x)
	case float32:
		return int16Value(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		if x < math.MinInt16 || x > math.MaxInt16 {
			return 0, fmt.Errorf("value %v out of int16 range", x)
		}
		return int16(x), nil
	case json.Number:
		i, err := strconv.ParseInt(string(x), 10, 16)
		if err != nil {
			return 0, fmt.Errorf("expected int16, got %s", x)
		}
		return int16(i), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	if n < math.MinInt16 || n > math.MaxInt16 {
		return 0, fmt.Errorf("value %d out of int16 range", n)
	}
	return int16(n), nil
}
