package wheelhouse

import (
	"pkt.systems/wheelhouse/core"
	"pkt.systems/wheelhouse/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnTabEvent(event schema.TabEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnTabEvent(event)
	}
}

func (f eventFanout) OnDownloadEvent(event schema.DownloadEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnDownloadEvent(event)
	}
}

func (f eventFanout) OnToast(event schema.ToastEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnToast(event)
	}
}
