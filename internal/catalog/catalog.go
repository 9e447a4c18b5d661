// Package catalog loads the stream catalog: the streams this node offers and the
// profiles of each, written as positional wire arrays in a TOML or YAML file.
package catalog

import (
	"errors"
	"fmt"

	"github.com/smazurov/profilenode/internal/metrics"
	"github.com/smazurov/profilenode/pkg/dds"
)

// CurrentVersion is the catalog file version this package reads and writes.
const CurrentVersion = 1

// File is the on-disk catalog.
type File struct {
	Version int          `toml:"version" yaml:"version"`
	Streams []StreamSpec `toml:"streams" yaml:"streams"`
}

// StreamSpec describes one stream. Each profile is a wire array whose layout
// follows from Kind, e.g. [30, "Z16 ", 640, 480] for a depth stream.
type StreamSpec struct {
	Name     string        `toml:"name" yaml:"name"`
	Sensor   string        `toml:"sensor" yaml:"sensor"`
	Kind     string        `toml:"kind" yaml:"kind"`
	Default  int           `toml:"default" yaml:"default"`
	Profiles []dds.Message `toml:"profiles" yaml:"profiles"`
}

// Catalog is a built catalog: every stream registered in a table with its profiles bound.
type Catalog struct {
	table   *dds.StreamTable
	refs    []dds.StreamRef
	byName  map[string]dds.StreamRef
	profile int
}

// Build decodes every profile in f and registers the streams in table. It is all or
// nothing: on error no stream from f remains in table.
func Build(f *File, table *dds.StreamTable) (*Catalog, error) {
	c := &Catalog{
		table:  table,
		byName: make(map[string]dds.StreamRef, len(f.Streams)),
	}

	for i, spec := range f.Streams {
		if err := c.add(spec); err != nil {
			c.Close()
			return nil, fmt.Errorf("stream %d (%s): %w", i, spec.Name, err)
		}
	}
	return c, nil
}

func (c *Catalog) add(spec StreamSpec) error {
	if spec.Name == "" {
		return errors.New("stream name is required")
	}
	if _, dup := c.byName[spec.Name]; dup {
		return errors.New("duplicate stream name")
	}

	kind, err := dds.ParseStreamKind(spec.Kind)
	if err != nil {
		return err
	}

	profiles := make([]dds.Profile, 0, len(spec.Profiles))
	for i, raw := range spec.Profiles {
		p, err := dds.ParseProfile(kind, raw)
		metrics.RecordDecode(kind, err)
		if err != nil {
			return fmt.Errorf("profile %d: %w", i, err)
		}
		profiles = append(profiles, p)
	}

	stream := dds.NewStream(spec.Name, spec.Sensor, kind)
	ref := c.table.Add(stream)
	if err := stream.InitProfiles(ref, profiles, spec.Default); err != nil {
		c.table.Remove(ref)
		metrics.RecordBind(err)
		return err
	}
	for range profiles {
		metrics.RecordBind(nil)
	}

	c.refs = append(c.refs, ref)
	c.byName[spec.Name] = ref
	c.profile += len(profiles)
	return nil
}

// Streams returns the live streams in file order.
func (c *Catalog) Streams() []*dds.Stream {
	out := make([]*dds.Stream, 0, len(c.refs))
	for _, ref := range c.refs {
		if s, ok := ref.Get(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Stream looks a stream up by name.
func (c *Catalog) Stream(name string) (*dds.Stream, bool) {
	ref, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return ref.Get()
}

// NumProfiles returns the total number of profiles across all streams.
func (c *Catalog) NumProfiles() int { return c.profile }

// Close removes the catalog's streams from the table. Profiles keep their binding
// but see the stream as gone, and Streams returns nothing afterwards.
func (c *Catalog) Close() {
	for _, ref := range c.refs {
		c.table.Remove(ref)
	}
}

// Encode turns streams back into a catalog file.
func Encode(streams []*dds.Stream) *File {
	f := &File{Version: CurrentVersion, Streams: make([]StreamSpec, 0, len(streams))}
	for _, s := range streams {
		spec := StreamSpec{
			Name:    s.Name(),
			Sensor:  s.SensorName(),
			Kind:    string(s.Kind()),
			Default: s.DefaultProfileIndex(),
		}
		for _, p := range s.Profiles() {
			spec.Profiles = append(spec.Profiles, p.Encode())
		}
		f.Streams = append(f.Streams, spec)
	}
	return f
}
