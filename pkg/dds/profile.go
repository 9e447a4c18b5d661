package dds

import (
	"fmt"
	"sync/atomic"
)

// Profile is one streaming capability a stream offers.
type Profile interface {
	Frequency() int16
	Format() StreamFormat

	// Encode returns the positional wire form, in decode order.
	Encode() Message

	// Details is the rendering without the enclosing angle brackets.
	Details() string
	String() string

	// BindStream associates the profile with its stream, exactly once.
	BindStream(ref StreamRef) error
	Stream() StreamRef
	IsBound() bool
}

// StreamProfile is the base profile: a format at a frequency.
type StreamProfile struct {
	frequency int16
	format    StreamFormat
	stream    atomic.Pointer[StreamRef]
}

// NewStreamProfile returns an unbound base profile.
func NewStreamProfile(format StreamFormat, frequency int16) *StreamProfile {
	return &StreamProfile{frequency: frequency, format: format}
}

// DecodeStreamProfile reads a base profile from msg at *cursor and advances the cursor
// past it. On error the cursor is left untouched and no profile is returned.
func DecodeStreamProfile(msg Message, cursor *int) (*StreamProfile, error) {
	p := &StreamProfile{}
	if err := decodeFields(p.fields(), msg, cursor); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *StreamProfile) fields() []field {
	return []field{
		int16Field("frequency", &p.frequency),
		formatField("format", &p.format),
	}
}

// Frequency returns the stream rate in Hz.
func (p *StreamProfile) Frequency() int16 { return p.frequency }

// Format returns the pixel format code.
func (p *StreamProfile) Format() StreamFormat { return p.format }

// Encode returns [frequency, format].
func (p *StreamProfile) Encode() Message { return encodeFields(p.fields()) }

// Details renders "FORMAT @ FREQUENCY Hz".
func (p *StreamProfile) Details() string {
	return fmt.Sprintf("%s @ %d Hz", p.format, p.frequency)
}

func (p *StreamProfile) String() string { return describe(p) }

// BindStream sets the back-reference to the owning stream. It fails if ref does not
// refer to a live stream, or if the profile is already bound (even to the same stream).
func (p *StreamProfile) BindStream(ref StreamRef) error {
	if !ref.Alive() {
		return bindError("cannot set stream to null")
	}
	if !p.stream.CompareAndSwap(nil, &ref) {
		return bindError("profile is already associated with a stream")
	}
	return nil
}

// pendingBind marks a profile claimed by Stream.InitProfiles but not yet committed.
var pendingBind = new(StreamRef)

// reserve claims an unbound profile so no other bind can take it.
func (p *StreamProfile) reserve() bool { return p.stream.CompareAndSwap(nil, pendingBind) }

// release undoes reserve.
func (p *StreamProfile) release() { p.stream.CompareAndSwap(pendingBind, nil) }

// commit binds a reserved profile to ref.
func (p *StreamProfile) commit(ref StreamRef) { p.stream.CompareAndSwap(pendingBind, &ref) }

// Stream returns the bound stream handle, or the zero StreamRef when unbound.
func (p *StreamProfile) Stream() StreamRef {
	if ref := p.stream.Load(); ref != nil && ref != pendingBind {
		return *ref
	}
	return StreamRef{}
}

// IsBound reports whether BindStream has succeeded.
func (p *StreamProfile) IsBound() bool { return p.stream.Load() != nil }

// VideoStreamProfile adds frame dimensions to the base profile.
type VideoStreamProfile struct {
	StreamProfile
	width  int16
	height int16
}

// NewVideoStreamProfile returns an unbound video profile.
func NewVideoStreamProfile(format StreamFormat, frequency, width, height int16) *VideoStreamProfile {
	return &VideoStreamProfile{
		StreamProfile: StreamProfile{frequency: frequency, format: format},
		width:         width,
		height:        height,
	}
}

// DecodeVideoStreamProfile reads base fields then width and height.
func DecodeVideoStreamProfile(msg Message, cursor *int) (*VideoStreamProfile, error) {
	p := &VideoStreamProfile{}
	if err := decodeFields(p.fields(), msg, cursor); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *VideoStreamProfile) fields() []field {
	return append(p.StreamProfile.fields(),
		int16Field("width", &p.width),
		int16Field("height", &p.height),
	)
}

// Width returns the frame width in pixels.
func (p *VideoStreamProfile) Width() int16 { return p.width }

// Height returns the frame height in pixels.
func (p *VideoStreamProfile) Height() int16 { return p.height }

// Encode returns [frequency, format, width, height].
func (p *VideoStreamProfile) Encode() Message { return encodeFields(p.fields()) }

// Details renders "WIDTHxHEIGHT FORMAT @ FREQUENCY Hz".
func (p *VideoStreamProfile) Details() string {
	return fmt.Sprintf("%dx%d %s", p.width, p.height, p.StreamProfile.Details())
}

func (p *VideoStreamProfile) String() string { return describe(p) }

// MotionStreamProfile is the profile of motion streams (accel, gyro, pose).
// Its wire layout is the base layout.
type MotionStreamProfile struct {
	StreamProfile
}

// NewMotionStreamProfile returns an unbound motion profile.
func NewMotionStreamProfile(format StreamFormat, frequency int16) *MotionStreamProfile {
	return &MotionStreamProfile{StreamProfile: StreamProfile{frequency: frequency, format: format}}
}

// DecodeMotionStreamProfile reads a motion profile.
func DecodeMotionStreamProfile(msg Message, cursor *int) (*MotionStreamProfile, error) {
	p := &MotionStreamProfile{}
	if err := decodeFields(p.fields(), msg, cursor); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MotionStreamProfile) String() string { return describe(p) }

func describe(p Profile) string {
	return "<" + p.Details() + ">"
}

// DecodeProfile decodes the variant implied by kind from msg at *cursor.
func DecodeProfile(kind StreamKind, msg Message, cursor *int) (Profile, error) {
	switch {
	case kind.IsVideo():
		p, err := DecodeVideoStreamProfile(msg, cursor)
		if err != nil {
			return nil, err
		}
		return p, nil
	case kind.IsMotion():
		p, err := DecodeMotionStreamProfile(msg, cursor)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, decodeError(nil, "unknown stream kind %q", string(kind))
	}
}

// ParseProfile decodes a whole message holding exactly one profile of the given kind.
func ParseProfile(kind StreamKind, msg Message) (Profile, error) {
	cursor := 0
	p, err := DecodeProfile(kind, msg, &cursor)
	if err != nil {
		return nil, err
	}
	if err := VerifyExhausted(msg, cursor); err != nil {
		return nil, err
	}
	return p, nil
}
