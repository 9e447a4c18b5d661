package catalog

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/profilenode/internal/config"
	"github.com/smazurov/profilenode/internal/events"
	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/pkg/dds"
)

// Manager owns the current catalog and swaps it when the file changes.
type Manager struct {
	store    Store
	table    *dds.StreamTable
	eventBus *events.Bus
	logger   *slog.Logger

	mu       sync.RWMutex
	current  *Catalog
	onChange []func(*Catalog)

	watchMu sync.Mutex
	watcher *config.Watcher[*File]
}

// ErrWatching is returned by Watch while a previous watch is still running.
var ErrWatching = errors.New("catalog: already watching")

// NewManager creates a manager. bus may be nil.
func NewManager(store Store, table *dds.StreamTable, bus *events.Bus, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if table == nil {
		table = dds.NewStreamTable()
	}
	return &Manager{
		store:    store,
		table:    table,
		eventBus: bus,
		logger:   logger.With("component", "catalog"),
	}
}

// Load reads and builds the catalog, replacing the current one on success. On
// failure the current catalog stays in place.
func (m *Manager) Load() error {
	f, err := m.store.Load()
	if err != nil {
		m.reloaded(nil, err)
		return err
	}
	return m.apply(f)
}

func (m *Manager) apply(f *File) error {
	next, err := Build(f, m.table)
	if err != nil {
		m.logger.Warn("Catalog rejected, keeping previous", "path", m.store.Path(), "error", err)
		m.reloaded(nil, err)
		return err
	}

	m.mu.Lock()
	prev := m.current
	m.current = next
	handlers := append([]func(*Catalog){}, m.onChange...)
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	m.logger.Info("Catalog loaded", "path", m.store.Path(), "streams", len(next.Streams()), "profiles", next.NumProfiles())
	metrics.SetCatalogStreams(len(next.Streams()))
	m.reloaded(next, nil)

	for _, h := range handlers {
		h(next)
	}
	return nil
}

func (m *Manager) reloaded(c *Catalog, err error) {
	if m.eventBus == nil {
		return
	}
	ev := events.CatalogReloadedEvent{
		Path:      m.store.Path(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
	} else {
		ev.Streams = len(c.Streams())
		ev.Profiles = c.NumProfiles()
	}
	m.eventBus.Publish(ev)
}

// Current returns the active catalog, or nil before the first successful Load.
func (m *Manager) Current() *Catalog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Streams returns the active catalog's streams.
func (m *Manager) Streams() []*dds.Stream {
	if c := m.Current(); c != nil {
		return c.Streams()
	}
	return nil
}

// OnChange registers a handler called after every successful load.
func (m *Manager) OnChange(fn func(*Catalog)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

// Save writes the active catalog back to the store.
func (m *Manager) Save() error {
	return m.store.Save(Encode(m.Streams()))
}

// Watch reloads the catalog whenever the file changes, until Stop. It fails with
// ErrWatching if a watch is already running.
func (m *Manager) Watch(debounce time.Duration) error {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	if m.watcher != nil {
		return ErrWatching
	}

	w := config.NewConfigWatcher(
		m.store.Path(),
		func(string) (*File, error) { return m.store.Load() },
		m.logger,
		config.WithDebounce[*File](debounce),
		config.WithErrorHandler[*File](func(err error) { m.reloaded(nil, err) }),
	)
	w.OnReload(func(f *File) { _ = m.apply(f) })
	if err := w.Start(); err != nil {
		return err
	}
	m.watcher = w
	return nil
}

// Stop stops watching and removes the active catalog's streams from the table.
func (m *Manager) Stop() error {
	var err error
	m.watchMu.Lock()
	if m.watcher != nil {
		err = m.watcher.Stop()
		m.watcher = nil
	}
	m.watchMu.Unlock()

	m.mu.Lock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
	m.mu.Unlock()
	return err
}
