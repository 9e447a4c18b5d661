package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store reads and writes a catalog file.
type Store interface {
	Load() (*File, error)
	Save(*File) error
	Path() string
}

// NewStore picks the file format from the extension: .toml, .yaml or .yml.
func NewStore(path string) (Store, error) {
	if path == "" {
		path = "streams.toml"
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return &fileStore{path: path, unmarshal: toml.Unmarshal, marshal: toml.Marshal}, nil
	case ".yaml", ".yml":
		return &fileStore{path: path, unmarshal: yaml.Unmarshal, marshal: yaml.Marshal}, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

type fileStore struct {
	path      string
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

func (s *fileStore) Path() string { return s.path }

// Load reads the catalog. A missing file is an empty catalog.
func (s *fileStore) Load() (*File, error) {
	f := &File{Version: CurrentVersion}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if err := s.unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	if f.Version == 0 {
		f.Version = CurrentVersion
	}
	if f.Version != CurrentVersion {
		return nil, fmt.Errorf("catalog %s: unsupported version %d", s.path, f.Version)
	}
	return f, nil
}

// Save writes the catalog, creating the directory if needed.
func (s *fileStore) Save(f *File) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := s.marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}
