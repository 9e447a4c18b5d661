package dds

import "fmt"

// field is one positional entry of a profile's wire layout. Encode and decode both
// walk the same ordered []field, so the two directions cannot disagree on order.
type field struct {
	name string
	get  func() any
	set  func(v any) error
}

func int16Field(name string, p *int16) field {
	return field{
		name: name,
		get:  func() any { return *p },
		set: func(v any) error {
			n, err := int16Value(v)
			if err != nil {
				return err
			}
			*p = n
			return nil
		},
	}
}

func formatField(name string, p *StreamFormat) field {
	return field{
		name: name,
		get:  func() any { return p.Text() },
		set: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", v)
			}
			f, err := NewStreamFormat(s)
			if err != nil {
				return err
			}
			*p = f
			return nil
		},
	}
}

func encodeFields(fields []field) Message {
	msg := make(Message, 0, len(fields))
	for _, f := range fields {
		msg = append(msg, f.get())
	}
	return msg
}

// decodeFields fills fields from msg starting at *cursor. The cursor only moves
// when every field decoded.
func decodeFields(fields []field, msg Message, cursor *int) error {
	if cursor == nil {
		return decodeError(nil, "nil cursor")
	}
	at := *cursor
	if at < 0 {
		return decodeError(nil, "negative cursor %d", at)
	}
	for _, f := range fields {
		if at >= len(msg) {
			return decodeError(nil, "missing field %q at index %d", f.name, at)
		}
		if err := f.set(msg[at]); err != nil {
			return decodeError(err, "invalid field %q at index %d", f.name, at)
		}
		at++
	}
	*cursor = at
	return nil
}
