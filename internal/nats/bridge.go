package nats

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/profilenode/internal/events"
	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/pkg/dds"
)

// BridgeOptions configures a Bridge.
type BridgeOptions struct {
	URL           string
	ReconnectWait time.Duration
	EventBus      *events.Bus
	Logger        *slog.Logger
}

// Bridge subscribes to every stream's profile subject, decodes the lists with the
// dds codec and forwards the outcome to the event bus. Decoded streams are kept in
// a local table, one entry per stream name, replaced on every new list.
type Bridge struct {
	opts     BridgeOptions
	eventBus *events.Bus
	conn     *nats.Conn
	sub      *nats.Subscription
	logger   *slog.Logger
	mu       sync.Mutex

	table  *dds.StreamTable
	remote map[string]dds.StreamRef
}

// NewBridge creates a new NATS-to-EventBus bridge.
func NewBridge(opts BridgeOptions) *Bridge {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	if opts.EventBus == nil {
		opts.EventBus = events.New()
	}

	return &Bridge{
		opts:     opts,
		eventBus: opts.EventBus,
		logger:   opts.Logger.With("component", "nats-bridge"),
		table:    dds.NewStreamTable(),
		remote:   make(map[string]dds.StreamRef),
	}
}

// Start connects to NATS and subscribes to the profile subjects.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(b.opts.URL,
		nats.Name("profilenode-bridge"),
		nats.ReconnectWait(b.opts.ReconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return err
	}

	sub, err := conn.Subscribe(SubjectAllProfiles, b.handleProfiles)
	if err != nil {
		conn.Close()
		return err
	}

	b.conn = conn
	b.sub = sub
	b.logger.Info("NATS bridge subscribed", "url", b.opts.URL, "subject", SubjectAllProfiles)
	return nil
}

func (b *Bridge) handleProfiles(msg *nats.Msg) {
	m, err := UnmarshalProfiles(msg.Data)
	if err != nil {
		b.logger.Warn("Failed to unmarshal profiles", "error", err, "subject", msg.Subject)
		b.reject("", -1, err)
		return
	}
	if _, err := b.Apply(m); err != nil {
		b.logger.Warn("Rejected profile list", "stream", m.Stream, "subject", msg.Subject, "error", err)
	}
}

// Apply decodes a received profile list and, if every profile is valid, replaces
// the local copy of that stream. A list with any bad profile is dropped whole; each
// offending profile is reported with a ProfileRejectedEvent.
func (b *Bridge) Apply(m ProfilesMessage) (*dds.Stream, error) {
	kind, err := dds.ParseStreamKind(m.Kind)
	if err != nil {
		b.reject(m.Stream, -1, err)
		return nil, err
	}

	profiles := make([]dds.Profile, 0, len(m.Profiles))
	var errs []error
	for i, raw := range m.Profiles {
		p, err := dds.ParseProfile(kind, raw)
		metrics.RecordDecode(kind, err)
		if err != nil {
			b.reject(m.Stream, i, err)
			errs = append(errs, fmt.Errorf("profile %d: %w", i, err))
			continue
		}
		profiles = append(profiles, p)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	stream := dds.NewStream(m.Stream, m.Sensor, kind)

	b.mu.Lock()
	ref := b.table.Add(stream)
	if err := stream.InitProfiles(ref, profiles, m.DefaultIndex); err != nil {
		b.table.Remove(ref)
		b.mu.Unlock()
		metrics.RecordBind(err)
		b.reject(m.Stream, -1, err)
		return nil, err
	}
	if old, ok := b.remote[m.Stream]; ok {
		b.table.Remove(old)
	}
	b.remote[m.Stream] = ref
	b.mu.Unlock()

	for range profiles {
		metrics.RecordBind(nil)
	}

	b.eventBus.Publish(events.ProfilesReceivedEvent{
		Stream:       stream.Name(),
		Sensor:       stream.SensorName(),
		Kind:         string(kind),
		DefaultIndex: stream.DefaultProfileIndex(),
		Profiles:     summarize(profiles),
		Timestamp:    timestamp(m.Timestamp),
	})
	b.logger.Debug("Received profiles", "stream", m.Stream, "count", len(profiles))
	return stream, nil
}

// Streams returns the streams received so far.
func (b *Bridge) Streams() []*dds.Stream {
	return b.table.Streams()
}

// Stream returns the most recent copy of the named stream.
func (b *Bridge) Stream(name string) (*dds.Stream, bool) {
	b.mu.Lock()
	ref, ok := b.remote[name]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	return ref.Get()
}

// RequestRepublish asks publishers to resend profile lists. An empty stream means all.
func (b *Bridge) RequestRepublish(stream, reason string) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	data, err := ControlMessage{
		Action:    ActionRepublish,
		Stream:    stream,
		Timestamp: time.Now().Format(time.RFC3339),
		Reason:    reason,
	}.Marshal()
	if err != nil {
		return err
	}
	return conn.Publish(SubjectControlRepublish, data)
}

func (b *Bridge) reject(stream string, index int, err error) {
	b.eventBus.Publish(events.ProfileRejectedEvent{
		Stream:    stream,
		Index:     index,
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Stop closes the bridge connection.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	b.logger.Info("NATS bridge stopped")
}

// IsConnected returns true if the bridge is connected to NATS.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}

func summarize(profiles []dds.Profile) []events.ProfileSummary {
	out := make([]events.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, events.ProfileSummary{
			Description: p.String(),
			Format:      p.Format().String(),
			Frequency:   p.Frequency(),
		})
	}
	return out
}

func timestamp(ts string) string {
	if ts != "" {
		return ts
	}
	return time.Now().Format(time.RFC3339)
}
