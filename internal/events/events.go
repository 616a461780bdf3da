// Package events defines the tagged union carried on msg_q: the bounded
// channel of {Button, Tick, Quit} messages the lifecycle controller posts
// and the event pump consumes. Keeping the type here (rather than inside
// eventpump, which is the consumer) lets the lifecycle controller
// construct messages without importing the package that runs inside the
// guest task — mirroring how Job/Result live in the shared foundation
// package instead of inside any one supervisor
// (kernel/threads/foundation/types.go).
package events

import "time"

// Kind identifies which variant of Message is populated.
type Kind uint8

const (
	Button Kind = iota
	Tick
	Quit
)

// TickUnit mirrors the granularity a tick callback fires at.
type TickUnit int

const (
	Second TickUnit = iota
	Minute
	Hour
	Day
)

// ButtonCallback is invoked with the click reference that fired and an
// opaque context pointer supplied at subscription time.
type ButtonCallback func(clickRef int, context interface{})

// TickCallback is invoked with the tick's wall-clock time and the unit
// granularity that elapsed.
type TickCallback func(t time.Time, units TickUnit)

// Message is the tagged union posted to msg_q. Only the field matching
// Kind is populated.
type Message struct {
	Kind Kind

	ButtonCallback ButtonCallback
	ClickRef       int
	ButtonContext  interface{}

	TickCallback TickCallback
	TickTime     time.Time
	TickUnits    TickUnit
}

// NewButton builds an APP_BUTTON message.
func NewButton(cb ButtonCallback, clickRef int, context interface{}) Message {
	return Message{Kind: Button, ButtonCallback: cb, ClickRef: clickRef, ButtonContext: context}
}

// NewTick builds an APP_TICK message.
func NewTick(cb TickCallback, t time.Time, units TickUnit) Message {
	return Message{Kind: Tick, TickCallback: cb, TickTime: t, TickUnits: units}
}

// NewQuit builds an APP_QUIT message.
func NewQuit() Message {
	return Message{Kind: Quit}
}
