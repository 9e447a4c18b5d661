package dds

import (
	"fmt"
	"strings"
	"sync"
)

// StreamKind is the out-of-band stream type tag that selects the profile variant.
type StreamKind string

// Video stream kinds.
const (
	KindDepth      StreamKind = "depth"
	KindIR         StreamKind = "ir"
	KindColor      StreamKind = "color"
	KindFisheye    StreamKind = "fisheye"
	KindConfidence StreamKind = "confidence"
)

// Motion stream kinds.
const (
	KindMotion StreamKind = "motion"
	KindAccel  StreamKind = "accel"
	KindGyro   StreamKind = "gyro"
	KindPose   StreamKind = "pose"
)

// IsVideo reports whether streams of this kind carry VideoStreamProfiles.
func (k StreamKind) IsVideo() bool {
	switch k {
	case KindDepth, KindIR, KindColor, KindFisheye, KindConfidence:
		return true
	}
	return false
}

// IsMotion reports whether streams of this kind carry MotionStreamProfiles.
func (k StreamKind) IsMotion() bool {
	switch k {
	case KindMotion, KindAccel, KindGyro, KindPose:
		return true
	}
	return false
}

// ParseStreamKind parses a kind tag (case-insensitive).
func ParseStreamKind(s string) (StreamKind, error) {
	k := StreamKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsVideo() && !k.IsMotion() {
		return "", fmt.Errorf("unknown stream kind %q", s)
	}
	return k, nil
}

// Stream is the stream entity profiles are offered under. Its lifecycle belongs to
// whoever owns the StreamTable it is registered in.
type Stream struct {
	name   string
	sensor string
	kind   StreamKind

	mu           sync.RWMutex
	profiles     []Profile
	defaultIndex int
}

// NewStream returns a stream with no profiles.
func NewStream(name, sensor string, kind StreamKind) *Stream {
	return &Stream{name: name, sensor: sensor, kind: kind}
}

// Name returns the stream (topic) name.
func (s *Stream) Name() string { return s.name }

// SensorName returns the name of the sensor the stream belongs to.
func (s *Stream) SensorName() string { return s.sensor }

// Kind returns the stream kind.
func (s *Stream) Kind() StreamKind { return s.kind }

// Profiles returns a copy of the stream's profiles.
func (s *Stream) Profiles() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

// DefaultProfile returns the profile marked as default.
func (s *Stream) DefaultProfile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.profiles) == 0 {
		return nil, false
	}
	return s.profiles[s.defaultIndex], true
}

// DefaultProfileIndex returns the index of the default profile.
func (s *Stream) DefaultProfileIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultIndex
}

// InitProfiles sets the stream's profiles and binds each of them to ref, which must
// be this stream's handle. Profiles can only be initialized once. It is all or
// nothing: on error every profile keeps its previous binding state.
func (s *Stream) InitProfiles(ref StreamRef, profiles []Profile, defaultIndex int) error {
	if got, ok := ref.Get(); !ok || got != s {
		return bindError("handle does not refer to this stream")
	}
	if len(profiles) == 0 {
		return bindError("at least one profile is required")
	}
	if defaultIndex < 0 || defaultIndex >= len(profiles) {
		return bindError(fmt.Sprintf("default profile index %d out of range [0,%d)", defaultIndex, len(profiles)))
	}
	seen := make(map[Profile]struct{}, len(profiles))
	for i, p := range profiles {
		if p == nil {
			return bindError(fmt.Sprintf("profile %d is nil", i))
		}
		if !s.accepts(p) {
			return bindError(fmt.Sprintf("profile %d (%T) does not match %s stream", i, p, s.kind))
		}
		if _, dup := seen[p]; dup {
			return bindError(fmt.Sprintf("profile %d appears more than once", i))
		}
		seen[p] = struct{}{}
		if p.IsBound() {
			return bindError(fmt.Sprintf("profile %d is already associated with a stream", i))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profiles != nil {
		return bindError("stream profiles are already initialized")
	}

	// Binding cannot be undone, so claim every profile first and commit only once
	// all claims hold. A concurrent BindStream wins or loses against the claim.
	claimed := make([]binder, 0, len(profiles))
	for i, p := range profiles {
		b := p.(binder)
		if !b.reserve() {
			for _, c := range claimed {
				c.release()
			}
			return bindError(fmt.Sprintf("profile %d is already associated with a stream", i))
		}
		claimed = append(claimed, b)
	}
	for _, c := range claimed {
		c.commit(ref)
	}

	s.profiles = append([]Profile(nil), profiles...)
	s.defaultIndex = defaultIndex
	return nil
}

// binder is implemented by every concrete profile through the embedded StreamProfile.
type binder interface {
	reserve() bool
	release()
	commit(ref StreamRef)
}

func (s *Stream) accepts(p Profile) bool {
	switch p.(type) {
	case *VideoStreamProfile:
		return s.kind.IsVideo()
	case *MotionStreamProfile:
		return s.kind.IsMotion()
	}
	return false
}

// StreamTable owns streams and hands out generation-checked, non-owning handles.
type StreamTable struct {
	mu    sync.RWMutex
	slots []streamSlot
	free  []uint32
	live  int
}

type streamSlot struct {
	stream *Stream
	gen    uint32
}

// NewStreamTable returns an empty table.
func NewStreamTable() *StreamTable {
	return &StreamTable{}
}

// Add registers s and returns its handle.
func (t *StreamTable) Add(s *Stream) StreamRef {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, streamSlot{gen: 1})
	}
	t.slots[idx].stream = s
	t.live++
	return StreamRef{table: t, index: idx, gen: t.slots[idx].gen}
}

// Remove drops the stream behind ref. Every handle to it reports gone afterwards.
func (t *StreamTable) Remove(ref StreamRef) bool {
	if ref.table != t {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.validLocked(ref) {
		return false
	}
	slot := &t.slots[ref.index]
	slot.stream = nil
	slot.gen++
	t.free = append(t.free, ref.index)
	t.live--
	return true
}

// Len returns the number of live streams.
func (t *StreamTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Streams returns the live streams in slot order.
func (t *StreamTable) Streams() []*Stream {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Stream, 0, t.live)
	for _, slot := range t.slots {
		if slot.stream != nil {
			out = append(out, slot.stream)
		}
	}
	return out
}

func (t *StreamTable) validLocked(ref StreamRef) bool {
	return int(ref.index) < len(t.slots) &&
		t.slots[ref.index].gen == ref.gen &&
		t.slots[ref.index].stream != nil
}

func (t *StreamTable) get(ref StreamRef) (*Stream, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.validLocked(ref) {
		return nil, false
	}
	return t.slots[ref.index].stream, true
}

// StreamRef is a non-owning handle to a Stream in a StreamTable.
// The zero value refers to nothing.
type StreamRef struct {
	table *StreamTable
	index uint32
	gen   uint32
}

// IsZero reports whether the handle was never assigned.
func (r StreamRef) IsZero() bool { return r.table == nil }

// Get returns the stream if it is still registered.
func (r StreamRef) Get() (*Stream, bool) {
	if r.table == nil {
		return nil, false
	}
	return r.table.get(r)
}

// Alive reports whether the stream is still registered.
func (r StreamRef) Alive() bool {
	_, ok := r.Get()
	return ok
}
