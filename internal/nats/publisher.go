package nats

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/profilenode/internal/events"
	"github.com/smazurov/profilenode/pkg/dds"
)

// ErrNotConnected is returned by publishing calls while offline.
var ErrNotConnected = errors.New("nats: publisher not connected")

// PublisherOptions configures a Publisher.
type PublisherOptions struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	EventBus      *events.Bus // optional
	Logger        *slog.Logger
}

// Publisher announces stream profile lists on NATS and answers republish
// requests. It degrades gracefully when NATS is unavailable.
type Publisher struct {
	opts        PublisherOptions
	conn        *nats.Conn
	sub         *nats.Subscription
	logger      *slog.Logger
	mu          sync.RWMutex
	onRepublish func(stream string)
	connected   bool
}

// NewPublisher creates a publisher. Call Connect before publishing.
func NewPublisher(opts PublisherOptions) *Publisher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "profilenode-publisher"
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	return &Publisher{
		opts:   opts,
		logger: opts.Logger.With("component", "nats-publisher"),
	}
}

// Connect establishes the connection. On failure the publisher stays usable in
// offline mode and the error is returned for the caller to log.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conn, err := nats.Connect(p.opts.URL,
		nats.Name(p.opts.Name),
		nats.ReconnectWait(p.opts.ReconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			p.mu.Lock()
			p.connected = false
			p.mu.Unlock()
			if err != nil {
				p.logger.Warn("NATS disconnected", "error", err)
			} else {
				p.logger.Debug("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			p.mu.Lock()
			p.connected = true
			p.mu.Unlock()
			p.logger.Info("NATS reconnected")
		}),
	)
	if err != nil {
		p.logger.Warn("Failed to connect to NATS, running in offline mode", "error", err)
		return err
	}

	p.conn = conn
	p.connected = true
	p.logger.Info("Connected to NATS", "url", p.opts.URL)

	p.subscribeControlLocked()
	return nil
}

// OnRepublish sets the callback for republish requests. stream is empty when
// every stream should be resent.
func (p *Publisher) OnRepublish(fn func(stream string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRepublish = fn

	if p.conn != nil && p.connected {
		p.subscribeControlLocked()
	}
}

// subscribeControlLocked subscribes to control commands (must hold lock).
func (p *Publisher) subscribeControlLocked() {
	if p.conn == nil || p.onRepublish == nil || p.sub != nil {
		return
	}

	sub, err := p.conn.Subscribe(SubjectControlRepublish, func(msg *nats.Msg) {
		ctrl, err := UnmarshalControl(msg.Data)
		if err != nil {
			p.logger.Warn("Failed to unmarshal control message", "error", err)
			return
		}
		if ctrl.Action != ActionRepublish {
			p.logger.Debug("Ignoring control message", "action", ctrl.Action)
			return
		}

		p.mu.RLock()
		fn := p.onRepublish
		p.mu.RUnlock()

		p.logger.Info("Received republish request", "stream", ctrl.Stream, "reason", ctrl.Reason)
		if fn != nil {
			fn(ctrl.Stream)
		}
	})
	if err != nil {
		p.logger.Warn("Failed to subscribe to control commands", "error", err)
		return
	}
	p.sub = sub
}

// PublishStream publishes the profile list of one stream.
func (p *Publisher) PublishStream(s *dds.Stream) error {
	p.mu.RLock()
	conn := p.conn
	connected := p.connected
	p.mu.RUnlock()

	if conn == nil || !connected {
		return ErrNotConnected
	}

	msg := NewProfilesMessage(s, time.Now().Format(time.RFC3339))
	data, err := msg.Marshal()
	if err != nil {
		return err
	}

	subject := SubjectStreamProfiles(s.Name())
	if err := conn.Publish(subject, data); err != nil {
		return err
	}

	p.logger.Debug("Published profiles", "stream", s.Name(), "subject", subject, "count", len(msg.Profiles))
	if p.opts.EventBus != nil {
		p.opts.EventBus.Publish(events.ProfilesPublishedEvent{
			Stream:    s.Name(),
			Subject:   subject,
			Count:     len(msg.Profiles),
			Timestamp: msg.Timestamp,
		})
	}
	return nil
}

// PublishAll publishes every stream and returns how many went out. Failures are
// logged and joined into the returned error.
func (p *Publisher) PublishAll(streams []*dds.Stream) (int, error) {
	var errs []error
	sent := 0
	for _, s := range streams {
		if err := p.PublishStream(s); err != nil {
			p.logger.Warn("Failed to publish profiles", "stream", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

// Flush waits until the server has processed everything published so far.
func (p *Publisher) Flush(timeout time.Duration) error {
	p.mu.RLock()
	conn := p.conn
	p.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.FlushTimeout(timeout)
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn != nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sub != nil {
		_ = p.sub.Unsubscribe()
		p.sub = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}

	p.connected = false
	p.logger.Debug("NATS publisher closed")
}
