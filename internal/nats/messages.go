package nats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smazurov/profilenode/pkg/dds"
)

// Subject prefixes for NATS topics.
const (
	SubjectStreamsPrefix = "profilenode.streams"
	SubjectControlPrefix = "profilenode.control"
)

// SubjectAllProfiles matches the profile subject of every stream.
const SubjectAllProfiles = SubjectStreamsPrefix + ".*.profiles"

// SubjectControlRepublish asks publishers to resend their profile lists.
const SubjectControlRepublish = SubjectControlPrefix + ".republish"

// ActionRepublish is the only control action.
const ActionRepublish = "republish"

// SubjectStreamProfiles returns the subject a stream's profile list is published on.
func SubjectStreamProfiles(stream string) string {
	return fmt.Sprintf("%s.%s.profiles", SubjectStreamsPrefix, subjectToken(stream))
}

// subjectToken makes a stream name usable as a single subject token.
func subjectToken(name string) string {
	if name == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '*' || r == '>' || r <= ' ' || r == 0x7f:
			return '_'
		}
		return r
	}, name)
}

// ProfilesMessage carries one stream's profile list. Each profile is a positional
// wire array in the layout its stream kind implies.
type ProfilesMessage struct {
	Stream       string        `json:"stream"`
	Sensor       string        `json:"sensor"`
	Kind         string        `json:"kind"`
	DefaultIndex int           `json:"default_index"`
	Profiles     []dds.Message `json:"profiles"`
	Timestamp    string        `json:"timestamp"`
}

// NewProfilesMessage encodes a stream and its profiles.
func NewProfilesMessage(s *dds.Stream, timestamp string) ProfilesMessage {
	profiles := s.Profiles()
	m := ProfilesMessage{
		Stream:       s.Name(),
		Sensor:       s.SensorName(),
		Kind:         string(s.Kind()),
		DefaultIndex: s.DefaultProfileIndex(),
		Profiles:     make([]dds.Message, 0, len(profiles)),
		Timestamp:    timestamp,
	}
	for _, p := range profiles {
		m.Profiles = append(m.Profiles, p.Encode())
	}
	return m
}

// Marshal serializes the message to JSON.
func (m ProfilesMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// ControlMessage is a command sent to profile publishers.
type ControlMessage struct {
	Action    string `json:"action"`
	Stream    string `json:"stream,omitempty"` // empty means every stream
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason,omitempty"`
}

// Marshal serializes the message to JSON.
func (m ControlMessage) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalProfiles deserializes a ProfilesMessage from JSON. Numbers inside the
// profile arrays are kept as json.Number so int16 fields decode exactly.
func UnmarshalProfiles(data []byte) (ProfilesMessage, error) {
	var m ProfilesMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	err := dec.Decode(&m)
	return m, err
}

// UnmarshalControl deserializes a ControlMessage from JSON.
func UnmarshalControl(data []byte) (ControlMessage, error) {
	var m ControlMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
