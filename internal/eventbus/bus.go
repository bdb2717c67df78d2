package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventTab carries tab lifecycle updates.
	EventTab EventType = "tab"
	// EventDownload carries download progress updates.
	EventDownload EventType = "download"
	// EventToast carries non-blocking user notices.
	EventToast EventType = "toast"
)

// Event represents a chrome-facing event emitted by the shell core.
type Event struct {
	Type     EventType
	Tab      schema.TabEvent
	Download schema.DownloadEvent
	Toast    schema.ToastEvent
}

// Bus fans shell events out to chrome and UI subscribers. Slow subscribers
// lose events rather than stalling the core.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns its channel plus a cancel
// function.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.Debug("eventbus unsubscribe")
		}
	}
}

// OnTabEvent publishes a tab event.
func (b *Bus) OnTabEvent(event schema.TabEvent) {
	b.publish(Event{Type: EventTab, Tab: event})
}

// OnDownloadEvent publishes a download event.
func (b *Bus) OnDownloadEvent(event schema.DownloadEvent) {
	b.publish(Event{Type: EventDownload, Download: event})
}

// OnToast publishes a toast notice.
func (b *Bus) OnToast(event schema.ToastEvent) {
	b.publish(Event{Type: EventToast, Toast: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
