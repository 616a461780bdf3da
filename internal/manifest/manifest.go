// Package manifest implements the application manager's C1 component: an
// append-only, singly linked collection of installed applications,
// populated at boot and consulted by the lifecycle controller on every
// start() request.
package manifest

import (
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/eventpump"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
)

// Type distinguishes privileged/UI behavior for a record.
type Type int

const (
	// System apps get menu-dispatch privileges: no select-button handler
	// is installed for them by the event pump.
	System Type = iota
	// Face apps render the watch face.
	Face
	// Watchapp is an ordinary third-party application.
	Watchapp
)

func (t Type) String() string {
	switch t {
	case System:
		return "SYSTEM"
	case Face:
		return "FACE"
	case Watchapp:
		return "WATCHAPP"
	default:
		return "UNKNOWN"
	}
}

// EntryFunc is a direct host-linked entry point for an internal app. It
// receives the pump for the generation it is running under so it can
// subscribe its button/tick callbacks before yielding control back to
// Pump.Run — the host-linked equivalent of a flash app's first instruction
// calling through the installed symbol table into the published event loop.
type EntryFunc func(p *eventpump.Pump)

// Record is one installed application. Records form a singly linked list
// in insertion order and are never freed once created.
type Record struct {
	Name       string
	Type       Type
	Entry      EntryFunc // non-nil only for internal apps
	IsInternal bool
	SlotID     int // 0 for internal apps
	Header     *flash.Header // cached parsed header: set by the scanner and refreshed on load; nil for internal apps

	next *Record
}

// Manifest is the singly linked, append-only collection of Records. There
// is no concurrency guard: the manifest is mutated only during boot,
// before the controller task starts.
type Manifest struct {
	head *Record
	tail *Record
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{}
}

// Add appends a record to the tail. Duplicate names are not rejected —
// first-match wins on Lookup, by design.
func (m *Manifest) Add(r *Record) {
	r.next = nil
	if m.tail == nil {
		m.head = r
		m.tail = r
		return
	}
	m.tail.next = r
	m.tail = r
}

// Lookup scans the manifest in insertion order and returns the first
// record whose stored name is a prefix of query of equal stored-length —
// i.e. a record named "System" matches a query of "SystemFoo". This
// preserves a prefix-match quirk rather than silently switching to exact
// equality: callers that pass single-token names see identical behavior
// either way, and nothing here depends on the quirk being removed.
func (m *Manifest) Lookup(query string) *Record {
	for r := m.head; r != nil; r = r.next {
		if len(query) < len(r.Name) {
			continue
		}
		if query[:len(r.Name)] == r.Name {
			return r
		}
	}
	return nil
}

// Head returns the first record for UI enumeration (the menu walks the
// linked list from here).
func (m *Manifest) Head() *Record {
	return m.head
}

// All materializes the manifest into a slice, for diagnostics and tests.
// It never mutates the manifest.
func (m *Manifest) All() []*Record {
	var out []*Record
	for r := m.head; r != nil; r = r.next {
		out = append(out, r)
	}
	return out
}
