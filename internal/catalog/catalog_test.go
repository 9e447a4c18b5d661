package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/profilenode/pkg/dds"
)

const tomlCatalog = `
version = 1

[[streams]]
name = "Depth"
sensor = "Stereo Module"
kind = "depth"
default = 1
profiles = [
  [30, "Z16 ", 640, 480],
  [15, "Z16 ", 1280, 720],
]

[[streams]]
name = "Gyro"
sensor = "Motion Module"
kind = "gyro"
profiles = [[200, "MXYZ"], [400, "MXYZ"]]
`

const yamlCatalog = `
version: 1
streams:
  - name: Color
    sensor: RGB Camera
    kind: color
    profiles:
      - [30, "YUYV", 1920, 1080]
      - [60, "RGB8", 640, 480]
`

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadFile(t *testing.T, path string) *File {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	f, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestBuildFromTOML(t *testing.T) {
	f := loadFile(t, writeCatalog(t, "streams.toml", tomlCatalog))

	table := dds.NewStreamTable()
	c, err := Build(f, table)
	if err != nil {
		t.Fatal(err)
	}

	streams := c.Streams()
	if len(streams) != 2 || table.Len() != 2 {
		t.Fatalf("got %d streams (table %d), want 2", len(streams), table.Len())
	}
	if c.NumProfiles() != 4 {
		t.Errorf("NumProfiles = %d, want 4", c.NumProfiles())
	}

	depth, ok := c.Stream("Depth")
	if !ok {
		t.Fatal("Depth missing")
	}
	def, ok := depth.DefaultProfile()
	if !ok || def.String() != "<1280x720 Z16 @ 15 Hz>" {
		t.Errorf("default profile = %v", def)
	}
	for _, p := range depth.Profiles() {
		if s, ok := p.Stream().Get(); !ok || s != depth {
			t.Error("profile not bound to its stream")
		}
	}

	gyro, _ := c.Stream("Gyro")
	if _, ok := gyro.Profiles()[0].(*dds.MotionStreamProfile); !ok {
		t.Errorf("gyro profile is %T, want motion profile", gyro.Profiles()[0])
	}
}

func TestBuildFromYAML(t *testing.T) {
	f := loadFile(t, writeCatalog(t, "streams.yaml", yamlCatalog))

	c, err := Build(f, dds.NewStreamTable())
	if err != nil {
		t.Fatal(err)
	}
	color, ok := c.Stream("Color")
	if !ok {
		t.Fatal("Color missing")
	}
	if got := color.Profiles()[1].String(); got != "<640x480 RGB8 @ 60 Hz>" {
		t.Errorf("profile 1 = %s", got)
	}
}

func TestBuildIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		spec StreamSpec
		want string
	}{
		{"bad profile", StreamSpec{Name: "Bad", Kind: "depth", Profiles: []dds.Message{{30, "Z16", 640}}}, "profile 0"},
		{"unknown kind", StreamSpec{Name: "Mic", Kind: "audio", Profiles: []dds.Message{{48, "PCM"}}}, "audio"},
		{"duplicate", StreamSpec{Name: "Depth", Kind: "depth", Profiles: []dds.Message{{30, "Z16", 640, 480}}}, "duplicate"},
		{"no name", StreamSpec{Kind: "depth", Profiles: []dds.Message{{30, "Z16", 640, 480}}}, "name"},
		{"no profiles", StreamSpec{Name: "Empty", Kind: "ir"}, "BIND_ERROR"},
		{"default out of range", StreamSpec{Name: "IR", Kind: "ir", Default: 2, Profiles: []dds.Message{{30, "Y8I", 640, 480}}}, "BIND_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{Version: 1, Streams: []StreamSpec{
				{Name: "Depth", Kind: "depth", Profiles: []dds.Message{{30, "Z16", 640, 480}}},
				tt.spec,
			}}

			table := dds.NewStreamTable()
			_, err := Build(f, table)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
			if table.Len() != 0 {
				t.Errorf("table has %d streams after failed build", table.Len())
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"streams.toml", "streams.yml"} {
		t.Run(name, func(t *testing.T) {
			original, err := Build(loadFile(t, writeCatalog(t, "in.toml", tomlCatalog)), dds.NewStreamTable())
			if err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(t.TempDir(), "nested", name)
			store, err := NewStore(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := store.Save(Encode(original.Streams())); err != nil {
				t.Fatal(err)
			}

			reloaded, err := Build(loadFile(t, path), dds.NewStreamTable())
			if err != nil {
				t.Fatal(err)
			}

			a, b := original.Streams(), reloaded.Streams()
			if len(a) != len(b) {
				t.Fatalf("stream count %d != %d", len(a), len(b))
			}
			for i := range a {
				if a[i].DefaultProfileIndex() != b[i].DefaultProfileIndex() {
					t.Errorf("%s: default index changed", a[i].Name())
				}
				pa, pb := a[i].Profiles(), b[i].Profiles()
				for j := range pa {
					if pa[j].Format().Text() != pb[j].Format().Text() || pa[j].String() != pb[j].String() {
						t.Errorf("%s profile %d: %s != %s", a[i].Name(), j, pa[j], pb[j])
					}
				}
			}
		})
	}
}

func TestStoreMissingFileAndFormats(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := store.Load()
	if err != nil {
		t.Fatalf("missing file should be empty catalog: %v", err)
	}
	if f.Version != CurrentVersion || len(f.Streams) != 0 {
		t.Errorf("unexpected empty catalog %+v", f)
	}

	if _, err := NewStore("streams.json"); err == nil {
		t.Error("expected error for unsupported extension")
	}

	bad := writeCatalog(t, "streams.toml", "version = 7\n")
	store, _ = NewStore(bad)
	if _, err := store.Load(); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestCloseRemovesStreams(t *testing.T) {
	table := dds.NewStreamTable()
	c, err := Build(loadFile(t, writeCatalog(t, "streams.toml", tomlCatalog)), table)
	if err != nil {
		t.Fatal(err)
	}
	depth, _ := c.Stream("Depth")
	profile := depth.Profiles()[0]

	c.Close()
	if table.Len() != 0 || len(c.Streams()) != 0 {
		t.Error("streams should be gone after Close")
	}
	if !profile.IsBound() || profile.Stream().Alive() {
		t.Error("profile stays bound but sees its stream as gone")
	}
}
