// Package models holds the request and response bodies of the HTTP API.
package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
	NATS    bool   `json:"nats" example:"true" doc:"Whether the NATS bridge is connected"`
}

type HealthResponse struct {
	Body HealthData
}

type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-01T00:00:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
	Formats   int    `json:"formats" example:"19" doc:"Number of accepted wire format codes"`
}

type VersionResponse struct {
	Body VersionData
}

// Format models
type FormatData struct {
	FourCC      string `json:"fourcc" example:"Z16" doc:"Wire format code, trailing padding trimmed"`
	Code        uint32 `json:"code" example:"1513305632" doc:"Big-endian packed four-character code"`
	V4L2        uint32 `json:"v4l2" example:"540422490" doc:"Little-endian V4L2 pixel format value"`
	RS2         string `json:"rs2" example:"Z16" doc:"Driver format name"`
	RS2Value    int    `json:"rs2_value" example:"1" doc:"Driver format enumeration value"`
	Provisional bool   `json:"provisional" example:"false" doc:"Whether the translation is provisional"`
	Canonical   bool   `json:"canonical" example:"true" doc:"Whether this code is emitted when translating from the driver format"`
}

type FormatsData struct {
	Formats []FormatData `json:"formats" doc:"Every wire code the node understands"`
	Count   int          `json:"count" example:"19" doc:"Number of codes"`
}

type FormatsResponse struct {
	Body FormatsData
}

type FormatRequest struct {
	FourCC string `path:"fourcc" maxLength:"16" example:"YUYV" doc:"Wire format code (up to four characters)"`
}

type FormatResponse struct {
	Body FormatData
}

type RS2Request struct {
	Name string `path:"name" example:"RGB8" doc:"Driver format name, case-insensitive"`
}

// Profile decoding models
type DecodeRequestData struct {
	Kind    string `json:"kind" example:"depth" doc:"Stream kind; selects the profile variant"`
	Profile []any  `json:"profile" doc:"Positional wire array, e.g. [60, \"Z16 \", 640, 480]"`
}

type DecodeRequest struct {
	Body DecodeRequestData
}

type ProfileData struct {
	Description string `json:"description" example:"<640x480 Z16 @ 60 Hz>" doc:"Human-readable profile"`
	Variant     string `json:"variant" example:"video" enum:"base,video,motion" doc:"Profile variant"`
	Format      string `json:"format" example:"Z16" doc:"Wire format code"`
	Frequency   int16  `json:"frequency" example:"60" doc:"Frames or samples per second"`
	Width       int16  `json:"width,omitempty" example:"640" doc:"Frame width (video only)"`
	Height      int16  `json:"height,omitempty" example:"480" doc:"Frame height (video only)"`
	RS2         string `json:"rs2,omitempty" example:"Z16" doc:"Driver format, empty when the code is unknown"`
	Encoded     []any  `json:"encoded" doc:"Profile re-encoded to its wire array"`
}

type DecodeResponse struct {
	Body ProfileData
}

// Stream models
type StreamData struct {
	Name         string        `json:"name" example:"Depth" doc:"Stream name"`
	Sensor       string        `json:"sensor" example:"Stereo Module" doc:"Owning sensor"`
	Kind         string        `json:"kind" example:"depth" doc:"Stream kind"`
	DefaultIndex int           `json:"default_index" example:"0" doc:"Index of the default profile"`
	Profiles     []ProfileData `json:"profiles" doc:"Profiles offered by the stream"`
}

type StreamsData struct {
	Streams []StreamData `json:"streams" doc:"Streams"`
	Count   int          `json:"count" example:"4" doc:"Number of streams"`
}

type StreamsResponse struct {
	Body StreamsData
}

type StreamsRequest struct {
	Source string `query:"source" default:"local" enum:"local,remote" doc:"Local catalog or streams received over NATS"`
}

// Stats models
type StatsData struct {
	Decoded           uint64 `json:"decoded" doc:"Profiles decoded"`
	DecodeErrors      uint64 `json:"decode_errors" doc:"Profiles that failed to decode"`
	Translations      uint64 `json:"translations" doc:"Format translations"`
	TranslationErrors uint64 `json:"translation_errors" doc:"Failed format translations"`
	Binds             uint64 `json:"binds" doc:"Bind attempts"`
	BindErrors        uint64 `json:"bind_errors" doc:"Failed bind attempts"`
	CatalogStreams    int    `json:"catalog_streams" doc:"Streams in the loaded catalog"`
}

type StatsResponse struct {
	Body StatsData
}

// Republish models
type RepublishRequestData struct {
	Stream string `json:"stream,omitempty" example:"Depth" doc:"Stream to resend; empty for all"`
	Reason string `json:"reason,omitempty" example:"manual" doc:"Free-form reason"`
}

type RepublishRequest struct {
	Body RepublishRequestData
}

type RepublishData struct {
	Status string `json:"status" example:"requested" doc:"Request status"`
}

type RepublishResponse struct {
	Body RepublishData
}
