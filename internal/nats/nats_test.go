package nats

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/profilenode/internal/events"
	"github.com/smazurov/profilenode/pkg/dds"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startTestServer(t *testing.T, port int) *Server {
	t.Helper()
	server := NewServer(ServerOptions{Port: port, Name: "test-server", Logger: testLogger()})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(server.Stop)
	return server
}

func depthStream(t *testing.T) *dds.Stream {
	t.Helper()
	table := dds.NewStreamTable()
	stream := dds.NewStream("Depth", "Stereo Module", dds.KindDepth)
	ref := table.Add(stream)
	err := stream.InitProfiles(ref, []dds.Profile{
		dds.NewVideoStreamProfile(dds.MustStreamFormat("Z16 "), 30, 640, 480),
		dds.NewVideoStreamProfile(dds.MustStreamFormat("Z16 "), 15, 1280, 720),
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return stream
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(ServerOptions{Port: 14222, Name: "test-server", Logger: testLogger()})

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	if !server.IsRunning() {
		t.Error("Server should be running after Start()")
	}
	if !strings.HasPrefix(server.ClientURL(), "nats://") {
		t.Errorf("ClientURL = %q", server.ClientURL())
	}

	server.Stop()
	if server.IsRunning() {
		t.Error("Server should not be running after Stop()")
	}
	if server.NumClients() != 0 {
		t.Error("NumClients should be 0 after Stop()")
	}
}

func TestPublisherGracefulDegradation(t *testing.T) {
	pub := NewPublisher(PublisherOptions{URL: "nats://localhost:59999", Logger: testLogger()})

	if err := pub.Connect(); err == nil {
		t.Error("Connect should fail with non-existent server")
	}
	if err := pub.PublishStream(depthStream(t)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishStream offline = %v, want ErrNotConnected", err)
	}
	if pub.IsConnected() {
		t.Error("Publisher should not be connected")
	}
	pub.Close()
}

func TestPublishAndBridge(t *testing.T) {
	server := startTestServer(t, 14223)
	bus := events.New()

	received := make(chan events.ProfilesReceivedEvent, 1)
	unsubRecv := bus.Subscribe(func(e events.ProfilesReceivedEvent) { received <- e })
	defer unsubRecv()
	published := make(chan events.ProfilesPublishedEvent, 1)
	unsubPub := bus.Subscribe(func(e events.ProfilesPublishedEvent) { published <- e })
	defer unsubPub()

	bridge := NewBridge(BridgeOptions{URL: server.ClientURL(), EventBus: bus, Logger: testLogger()})
	if err := bridge.Start(); err != nil {
		t.Fatal(err)
	}
	defer bridge.Stop()

	pub := NewPublisher(PublisherOptions{URL: server.ClientURL(), EventBus: bus, Logger: testLogger()})
	if err := pub.Connect(); err != nil {
		t.Fatal(err)
	}
	defer pub.Close()

	if _, err := pub.PublishAll([]*dds.Stream{depthStream(t)}); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-published:
		if e.Subject != "profilenode.streams.Depth.profiles" || e.Count != 2 {
			t.Errorf("unexpected published event %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for published event")
	}

	select {
	case e := <-received:
		if e.Stream != "Depth" || e.Kind != "depth" || len(e.Profiles) != 2 {
			t.Fatalf("unexpected received event %+v", e)
		}
		if e.Profiles[0].Description != "<640x480 Z16 @ 30 Hz>" {
			t.Errorf("profile 0 = %q", e.Profiles[0].Description)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for received event")
	}

	stream, ok := bridge.Stream("Depth")
	if !ok {
		t.Fatal("bridge should hold the received stream")
	}
	for _, p := range stream.Profiles() {
		got, ok := p.Stream().Get()
		if !ok || got != stream {
			t.Error("received profiles should be bound to the bridge's stream")
		}
	}
}

func TestBridgeReplacesStream(t *testing.T) {
	bridge := NewBridge(BridgeOptions{Logger: testLogger()})
	msg := NewProfilesMessage(depthStream(t), "")

	first, err := bridge.Apply(msg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := bridge.Apply(msg)
	if err != nil {
		t.Fatal(err)
	}

	if len(bridge.Streams()) != 1 {
		t.Errorf("got %d streams, want 1", len(bridge.Streams()))
	}
	if got, _ := bridge.Stream("Depth"); got != second {
		t.Error("latest list should win")
	}
	if _, ok := first.Profiles()[0].Stream().Get(); ok {
		t.Error("profiles of the replaced stream should see it gone")
	}
}

func TestBridgeRejects(t *testing.T) {
	bus := events.New()
	rejected := make(chan events.ProfileRejectedEvent, 8)
	unsub := bus.Subscribe(func(e events.ProfileRejectedEvent) { rejected <- e })
	defer unsub()

	bridge := NewBridge(BridgeOptions{EventBus: bus, Logger: testLogger()})

	tests := []struct {
		name  string
		msg   ProfilesMessage
		index int
	}{
		{
			name:  "unknown kind",
			msg:   ProfilesMessage{Stream: "Mic", Kind: "audio", Profiles: []dds.Message{{48000, "PCM"}}},
			index: -1,
		},
		{
			name:  "missing height",
			msg:   ProfilesMessage{Stream: "Depth", Kind: "depth", Profiles: []dds.Message{{30, "Z16", 640, 480}, {30, "Z16", 640}}},
			index: 1,
		},
		{
			name:  "default out of range",
			msg:   ProfilesMessage{Stream: "Gyro", Kind: "gyro", DefaultIndex: 3, Profiles: []dds.Message{{200, "MXYZ"}}},
			index: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := bridge.Apply(tt.msg); err == nil {
				t.Fatal("expected rejection")
			}
			select {
			case e := <-rejected:
				if e.Index != tt.index || e.Stream != tt.msg.Stream {
					t.Errorf("unexpected rejection %+v", e)
				}
			case <-time.After(time.Second):
				t.Fatal("timeout waiting for rejection event")
			}
			if _, ok := bridge.Stream(tt.msg.Stream); ok {
				t.Error("rejected list must not be stored")
			}
		})
	}
}

func TestRepublishRequest(t *testing.T) {
	server := startTestServer(t, 14224)

	pub := NewPublisher(PublisherOptions{URL: server.ClientURL(), Logger: testLogger()})
	if err := pub.Connect(); err != nil {
		t.Fatal(err)
	}
	defer pub.Close()

	requested := make(chan string, 1)
	pub.OnRepublish(func(stream string) { requested <- stream })
	if err := pub.Flush(time.Second); err != nil {
		t.Fatal(err)
	}

	bridge := NewBridge(BridgeOptions{URL: server.ClientURL(), Logger: testLogger()})
	if err := bridge.RequestRepublish("Depth", "test"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("RequestRepublish before Start = %v", err)
	}
	if err := bridge.Start(); err != nil {
		t.Fatal(err)
	}
	defer bridge.Stop()

	if err := bridge.RequestRepublish("Depth", "test"); err != nil {
		t.Fatal(err)
	}

	select {
	case stream := <-requested:
		if stream != "Depth" {
			t.Errorf("stream = %q, want Depth", stream)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for republish request")
	}
}
