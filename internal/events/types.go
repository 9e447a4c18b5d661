package events

// Event type constants for kelindar/event.
const (
	TypeProfilesPublished uint32 = iota + 1
	TypeProfilesReceived
	TypeProfileRejected
	TypeCatalogReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// ProfileSummary is the printable form of one decoded profile.
type ProfileSummary struct {
	Description string `json:"description" example:"<640x480 Z16 @ 30 Hz>" doc:"Human-readable profile"`
	Format      string `json:"format" example:"Z16" doc:"Wire format code"`
	Frequency   int16  `json:"frequency" example:"30" doc:"Frames or samples per second"`
}

// ProfilesPublishedEvent is emitted after a stream's profile list went out on the transport.
type ProfilesPublishedEvent struct {
	Stream    string `json:"stream" example:"Depth" doc:"Stream name"`
	Subject   string `json:"subject" example:"profilenode.streams.Depth.profiles" doc:"Transport subject"`
	Count     int    `json:"count" example:"3" doc:"Number of profiles published"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfilesPublishedEvent.
func (e ProfilesPublishedEvent) Type() uint32 { return TypeProfilesPublished }

// ProfilesReceivedEvent is emitted when a remote profile list decoded cleanly.
type ProfilesReceivedEvent struct {
	Stream       string           `json:"stream" example:"Depth" doc:"Stream name"`
	Sensor       string           `json:"sensor" example:"Stereo Module" doc:"Owning sensor"`
	Kind         string           `json:"kind" example:"depth" doc:"Stream kind"`
	DefaultIndex int              `json:"default_index" example:"0" doc:"Index of the default profile"`
	Profiles     []ProfileSummary `json:"profiles" doc:"Decoded profiles"`
	Timestamp    string           `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfilesReceivedEvent.
func (e ProfilesReceivedEvent) Type() uint32 { return TypeProfilesReceived }

// ProfileRejectedEvent is emitted when a received profile could not be decoded or bound.
type ProfileRejectedEvent struct {
	Stream    string `json:"stream" example:"Depth" doc:"Stream name, if known"`
	Index     int    `json:"index" example:"2" doc:"Position of the offending profile, -1 for the whole message"`
	Error     string `json:"error" example:"DECODE_ERROR: missing height field at index 3" doc:"Rejection reason"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfileRejectedEvent.
func (e ProfileRejectedEvent) Type() uint32 { return TypeProfileRejected }

// CatalogReloadedEvent is emitted after the stream catalog file was (re)loaded.
type CatalogReloadedEvent struct {
	Path      string `json:"path" example:"streams.toml" doc:"Catalog file"`
	Streams   int    `json:"streams" example:"4" doc:"Number of streams"`
	Profiles  int    `json:"profiles" example:"12" doc:"Number of profiles"`
	Error     string `json:"error,omitempty" doc:"Load error, empty on success"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CatalogReloadedEvent.
func (e CatalogReloadedEvent) Type() uint32 { return TypeCatalogReloaded }
