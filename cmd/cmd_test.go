package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/smazurov/profilenode/internal/nats"
	"github.com/smazurov/profilenode/pkg/dds"
	"github.com/spf13/cobra"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormatsTable(t *testing.T) {
	out, err := run(t, CreateFormatsCmd(), "")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(dds.KnownStreamFormats())+1 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "FOURCC") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.Contains(out, `"YUY2"  YUYV`) {
		t.Errorf("YUY2 synonym row missing:\n%s", out)
	}
}

func TestFormatsJSON(t *testing.T) {
	out, err := run(t, CreateFormatsCmd(), "", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var rows []formatRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	byCode := make(map[string]formatRow, len(rows))
	for _, r := range rows {
		byCode[r.FourCC] = r
	}
	if r := byCode["YUY2"]; r.RS2 != "YUYV" || r.Canonical {
		t.Errorf("YUY2 = %+v, want non-canonical YUYV", r)
	}
	if r := byCode["YUYV"]; !r.Canonical {
		t.Errorf("YUYV = %+v, want canonical", r)
	}
	if r := byCode["MXYZ"]; !r.Provisional {
		t.Errorf("MXYZ = %+v, want provisional", r)
	}
}

func TestFormatsReverse(t *testing.T) {
	out, err := run(t, CreateFormatsCmd(), "", "--reverse", "--json")
	if err != nil {
		t.Fatal(err)
	}

	var rows []reverseRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, r := range rows {
		switch r.RS2 {
		case "Y8":
			if r.FourCC != "GREY" {
				t.Errorf("Y8 -> %q, want GREY", r.FourCC)
			}
		case "ANY":
			if r.Error == "" {
				t.Error("ANY should not translate")
			}
		}
	}
}

func TestDecode(t *testing.T) {
	out, err := run(t, CreateDecodeCmd(), "", "--kind", "depth", `[60, "Z16 ", 640, 480]`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<640x480 Z16 @ 60 Hz>") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "rs2 Z16") {
		t.Errorf("missing driver format:\n%s", out)
	}
}

func TestDecodeStdin(t *testing.T) {
	out, err := run(t, CreateDecodeCmd(), `[200, "MXYZ"]`, "-k", "gyro")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<MXYZ @ 200 Hz>") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown kind", []string{"--kind", "audio", `[30, "YUYV"]`}, "unknown stream kind"},
		{"short message", []string{"--kind", "color", `[30, "YUYV", 640]`}, "DECODE_ERROR"},
		{"not an array", []string{`{"frequency": 30}`}, "DECODE_ERROR"},
		{"overlong format", []string{"--kind", "gyro", `[30, "TOOLONG"]`}, "FORMAT_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, CreateDecodeCmd(), "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

const publishCatalog = `
version = 1

[[streams]]
name = "Depth"
sensor = "Stereo Module"
kind = "depth"
profiles = [[30, "Z16 ", 640, 480]]

[[streams]]
name = "Gyro"
sensor = "Motion Module"
kind = "gyro"
profiles = [[200, "MXYZ"]]
`

func TestPublish(t *testing.T) {
	server := nats.NewServer(nats.ServerOptions{Port: 14226, Name: "cmd-test"})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(server.Stop)

	conn, err := natsgo.Connect(server.ClientURL())
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	received := make(chan *natsgo.Msg, 4)
	sub, err := conn.ChanSubscribe(nats.SubjectAllProfiles, received)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = sub.Unsubscribe() }()
	if err := conn.Flush(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "streams.toml")
	if err := os.WriteFile(catalogPath, []byte(publishCatalog), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, CreatePublishCmd(), "",
		"--config", filepath.Join(dir, "missing.toml"),
		"--catalog", catalogPath,
		"--nats", server.ClientURL(),
		"--stream", "Gyro",
	)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "published 1 of 1 streams") {
		t.Errorf("unexpected output: %q", out)
	}

	select {
	case msg := <-received:
		if msg.Subject != nats.SubjectStreamProfiles("Gyro") {
			t.Errorf("subject = %q", msg.Subject)
		}
		m, err := nats.UnmarshalProfiles(msg.Data)
		if err != nil {
			t.Fatal(err)
		}
		if m.Stream != "Gyro" || len(m.Profiles) != 1 {
			t.Errorf("unexpected message %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no profile list received")
	}
}

func TestPublishRejectsInvalidCatalog(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "streams.toml")
	bad := strings.Replace(publishCatalog, `[[200, "MXYZ"]]`, `[[200, "MXYZ", 1]]`, 1)
	if err := os.WriteFile(catalogPath, []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, CreatePublishCmd(), "",
		"--config", filepath.Join(dir, "missing.toml"),
		"--catalog", catalogPath,
		"--nats", "nats://127.0.0.1:59998",
	)
	if err == nil || !strings.Contains(err.Error(), "DECODE_ERROR") {
		t.Errorf("error = %v, want decode error before connecting", err)
	}
}

func TestPublishUnknownStream(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "streams.toml")
	if err := os.WriteFile(catalogPath, []byte(publishCatalog), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, CreatePublishCmd(), "",
		"--config", filepath.Join(dir, "missing.toml"),
		"--catalog", catalogPath,
		"--stream", "Color",
	)
	if err == nil || !strings.Contains(err.Error(), `"Color"`) {
		t.Errorf("error = %v", err)
	}
}
