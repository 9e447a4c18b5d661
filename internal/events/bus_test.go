package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan ProfilesReceivedEvent, 1)

	unsub := bus.Subscribe(func(e ProfilesReceivedEvent) {
		received <- e
	})
	defer unsub()

	ev := ProfilesReceivedEvent{
		Stream: "Depth",
		Kind:   "depth",
		Profiles: []ProfileSummary{
			{Description: "<640x480 Z16 @ 30 Hz>", Format: "Z16", Frequency: 30},
		},
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(ev)

	got := <-received
	if got.Stream != "Depth" || len(got.Profiles) != 1 {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan CatalogReloadedEvent, 1)
	received2 := make(chan CatalogReloadedEvent, 1)

	unsub1 := bus.Subscribe(func(e CatalogReloadedEvent) { received1 <- e })
	defer unsub1()
	unsub2 := bus.Subscribe(func(e CatalogReloadedEvent) { received2 <- e })
	defer unsub2()

	bus.Publish(CatalogReloadedEvent{Path: "streams.toml", Streams: 2})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan ProfileRejectedEvent, 1)

	unsub := bus.Subscribe(func(e ProfileRejectedEvent) { received <- e })

	bus.Publish(ProfileRejectedEvent{Stream: "Depth", Index: 0})
	<-received

	unsub()
	bus.Publish(ProfileRejectedEvent{Stream: "Depth", Index: 1})

	select {
	case e := <-received:
		t.Fatalf("received %+v after unsubscribe", e)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	published := make(chan bool, 1)
	rejected := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ ProfilesPublishedEvent) { published <- true })
	defer unsub1()
	unsub2 := bus.Subscribe(func(_ ProfileRejectedEvent) { rejected <- true })
	defer unsub2()

	bus.Publish(ProfilesPublishedEvent{Stream: "Color"})
	<-published

	select {
	case <-rejected:
		t.Fatal("rejected subscriber should not see ProfilesPublishedEvent")
	case <-time.After(10 * time.Millisecond):
	}

	bus.Publish(ProfileRejectedEvent{Stream: "Color"})
	<-rejected

	select {
	case <-published:
		t.Fatal("published subscriber should not see ProfileRejectedEvent")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBus_UnknownHandler(t *testing.T) {
	bus := New()
	unsub := bus.Subscribe(func(string) {})
	if unsub == nil {
		t.Fatal("expected no-op unsubscribe")
	}
	unsub()
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)
	unsub := bus.Subscribe(func(_ ProfilesPublishedEvent) { receivedCh <- true })
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(ProfilesPublishedEvent{
					Stream:    "Depth",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}
	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 1)

	unsub := SubscribeToChannel[CatalogReloadedEvent](bus, ch)
	defer unsub()

	bus.Publish(CatalogReloadedEvent{Path: "a.toml"})
	// Channel is full now; the second event is dropped rather than blocking.
	bus.Publish(CatalogReloadedEvent{Path: "b.toml"})

	select {
	case e := <-ch:
		if got := e.(CatalogReloadedEvent).Path; got != "a.toml" {
			t.Errorf("path = %q, want a.toml", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}
