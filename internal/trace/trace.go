package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// BuildTrace is the canonical, deterministic record of one build run: what
// was assembled, what was embedded, and the archive that was written.
//
// Invariants:
//   - Events carry logical facts only: no timestamps, durations, PIDs, or
//     any other runtime-dependent values.
//   - Canonical ordering is independent of worker completion order;
//     identical builds serialize to identical bytes.
//
// BuildID is the deterministic identity of the build configuration
// (target triple plus ordered inputs); this package does not compute it.
// Treat a BuildTrace as immutable once Canonicalize() has run.
type BuildTrace struct {
	BuildID string
	Events  []Event
}

// EventKind is the stable discriminator for Event. The string values are
// part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	EventSourceAssembled EventKind = "SourceAssembled"
	EventBinaryEmbedded  EventKind = "BinaryEmbedded"
	EventArchiveWritten  EventKind = "ArchiveWritten"
)

// Event is a single logical build fact.
//
// Determinism constraints:
//   - No timestamps or error strings.
//   - Empty Symbols slices are normalized to nil (omitted in JSON).
type Event struct {
	Kind EventKind

	// Source is the input path the event refers to; required for
	// per-input events.
	Source string

	// Object is the produced object path (or the archive path for
	// ArchiveWritten).
	Object string

	// Symbols lists the exported symbols guaranteed for the object;
	// set only for BinaryEmbedded events.
	Symbols []string

	// Members is the archive member count; set only for ArchiveWritten.
	Members int
}

// Validate checks basic invariants and returns a descriptive error.
func (t *BuildTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.BuildID == "" {
		return errors.New("buildId is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		switch e.Kind {
		case EventSourceAssembled, EventBinaryEmbedded:
			if e.Source == "" {
				return fmt.Errorf("events[%d].source is required for kind %q", i, e.Kind)
			}
		case EventArchiveWritten:
			if e.Object == "" {
				return fmt.Errorf("events[%d].object is required for kind %q", i, e.Kind)
			}
		case "":
			return fmt.Errorf("events[%d].kind is required", i)
		}
	}
	return nil
}

// Canonicalize normalizes and sorts the trace into its canonical form.
//
// Ordering is a total order over events independent of recording order:
// (kindOrder, source, object, symbolsLex).
func (t *BuildTrace) Canonicalize() {
	if t == nil {
		return
	}
	for i := range t.Events {
		if len(t.Events[i].Symbols) == 0 {
			t.Events[i].Symbols = nil
			continue
		}
		syms := make([]string, len(t.Events[i].Symbols))
		copy(syms, t.Events[i].Symbols)
		sort.Strings(syms)
		t.Events[i].Symbols = syms
	}

	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return lessStringSlices(a.Symbols, b.Symbols)
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventSourceAssembled:
		return 10
	case EventBinaryEmbedded:
		return 20
	case EventArchiveWritten:
		return 30
	default:
		return 1000
	}
}

func lessStringSlices(a, b []string) bool {
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	for i := 0; i < min; i++ {
		if a[i] == b[i] {
			continue
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}

// CanonicalJSON returns the canonical JSON encoding of the trace. It
// canonicalizes a copy so the caller's slices are not mutated.
func (t BuildTrace) CanonicalJSON() ([]byte, error) {
	copyTrace := BuildTrace{BuildID: t.BuildID}
	copyTrace.Events = make([]Event, len(t.Events))
	copy(copyTrace.Events, t.Events)
	copyTrace.Canonicalize()
	if err := copyTrace.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&copyTrace)
}

// Hash returns the deterministic trace hash (sha256 hex) of the canonical
// JSON bytes.
func (t BuildTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes field ordering so serialization is byte-stable.
func (t BuildTrace) MarshalJSON() ([]byte, error) {
	if t.BuildID == "" {
		return nil, errors.New("buildId is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"buildId\":")
	id, _ := json.Marshal(t.BuildID)
	buf.Write(id)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON fixes event field ordering and omits absent optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	if e.Source != "" {
		buf.WriteString(",\"source\":")
		sb, _ := json.Marshal(e.Source)
		buf.Write(sb)
	}
	if e.Object != "" {
		buf.WriteString(",\"object\":")
		ob, _ := json.Marshal(e.Object)
		buf.Write(ob)
	}
	if len(e.Symbols) > 0 {
		buf.WriteString(",\"symbols\":")
		yb, err := json.Marshal(e.Symbols)
		if err != nil {
			return nil, err
		}
		buf.Write(yb)
	}
	if e.Members > 0 {
		buf.WriteString(",\"members\":")
		mb, _ := json.Marshal(e.Members)
		buf.Write(mb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
