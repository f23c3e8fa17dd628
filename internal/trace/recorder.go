package trace

import "sync"

// Recorder is a concurrency-safe in-memory event collector. The build
// pipeline records from worker goroutines; contention on the single mutex
// is irrelevant to the canonical ordering, which is computed after
// collection.
//
// Record never panics and never returns an error: tracing is observational
// and must not affect build behavior.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all recorded events.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Trace builds a BuildTrace from the currently recorded events. The
// returned trace is independent of the recorder (events are copied).
func (r *Recorder) Trace(buildID string) BuildTrace {
	tr := BuildTrace{BuildID: buildID}
	tr.Events = r.Snapshot()
	tr.Canonicalize()
	return tr
}

// SourceAssembled records a successful assembly of a hand-written source.
func (r *Recorder) SourceAssembled(source, object string) {
	r.Record(Event{Kind: EventSourceAssembled, Source: source, Object: object})
}

// BinaryEmbedded records a successful binary embedding with its exported
// symbols.
func (r *Recorder) BinaryEmbedded(source, object string, symbols []string) {
	r.Record(Event{Kind: EventBinaryEmbedded, Source: source, Object: object, Symbols: symbols})
}

// Archived records the written archive and its member count.
func (r *Recorder) Archived(archive string, members int) {
	r.Record(Event{Kind: EventArchiveWritten, Object: archive, Members: members})
}
