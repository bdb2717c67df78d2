package core

import "pkt.systems/wheelhouse/schema"

// EventSink receives tab, download, and toast events from the shell core.
type EventSink interface {
	OnTabEvent(event schema.TabEvent)
	OnDownloadEvent(event schema.DownloadEvent)
	OnToast(event schema.ToastEvent)
}
