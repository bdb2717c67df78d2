package eventbus

import (
	"testing"

	"pkt.systems/wheelhouse/schema"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.OnTabEvent(schema.TabEvent{Type: schema.TabEventCreated})
	bus.OnDownloadEvent(schema.DownloadEvent{Type: schema.DownloadEventProgress})
	bus.OnToast(schema.ToastEvent{Message: "Bookmark added"})

	first := <-ch
	if first.Type != EventTab || first.Tab.Type != schema.TabEventCreated {
		t.Fatalf("unexpected first event: %+v", first)
	}
	second := <-ch
	if second.Type != EventDownload || second.Download.Type != schema.DownloadEventProgress {
		t.Fatalf("unexpected second event: %+v", second)
	}
	third := <-ch
	if third.Type != EventToast || third.Toast.Message != "Bookmark added" {
		t.Fatalf("unexpected third event: %+v", third)
	}
}

func TestUnsubscribedChannelStopsReceiving(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()

	bus.OnToast(schema.ToastEvent{Message: "late"})
	if _, ok := <-ch; ok {
		t.Fatalf("cancelled subscription must be closed and drained")
	}
}

func TestSlowSubscriberLosesEventsWithoutBlocking(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the buffer; publish must not block.
	for i := 0; i < 300; i++ {
		bus.OnToast(schema.ToastEvent{Message: "flood"})
	}
	if len(ch) != 256 {
		t.Fatalf("expected a full buffer of 256, got %d", len(ch))
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	bus := New(nil)
	bus.OnTabEvent(schema.TabEvent{Type: schema.TabEventUpdated})
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	bus := New(nil)
	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	bus.OnToast(schema.ToastEvent{Message: "fanout"})
	if event := <-a; event.Toast.Message != "fanout" {
		t.Fatalf("subscriber a missed the event: %+v", event)
	}
	if event := <-b; event.Toast.Message != "fanout" {
		t.Fatalf("subscriber b missed the event: %+v", event)
	}
}
