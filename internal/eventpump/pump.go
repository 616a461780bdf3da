// Package eventpump implements the application manager's C5 component: the
// cooperative loop a running guest task executes to receive button, tick,
// and quit events, dispatching each to the callback the guest registered
// for it. This is the only code that ever runs "inside" a guest task on the
// host simulation, the same shape as the blocking receive loop at the top
// of every supervisor's worker goroutine
// (kernel/threads/supervisor/base.go), generalized here from a job queue to
// a tagged-union event queue.
package eventpump

import (
	"context"
	"time"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/events"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/rtos"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

// Pump is the per-guest event loop. One Pump is constructed per running
// app and discarded when the app quits; the underlying queue is owned by
// the lifecycle controller and drained fresh on every start.
type Pump struct {
	queue        *rtos.Queue[events.Message]
	recvTimeout  time.Duration
	logger       *utils.Logger
	isSystem     bool

	buttonCallback events.ButtonCallback
	buttonContext  interface{}
	tickCallback   events.TickCallback
}

// New constructs a Pump bound to queue. isSystem disables the select-button
// handler installation path for system apps: they get menu-dispatch
// privileges and do not subscribe their own button handler through the
// pump.
func New(queue *rtos.Queue[events.Message], recvTimeout time.Duration, isSystem bool, logger *utils.Logger) *Pump {
	if logger == nil {
		logger = utils.DefaultLogger("eventpump")
	}
	return &Pump{queue: queue, recvTimeout: recvTimeout, isSystem: isSystem, logger: logger}
}

// SubscribeButton registers the callback invoked for every Button message,
// unless this pump belongs to a system app.
func (p *Pump) SubscribeButton(cb events.ButtonCallback, context interface{}) {
	if p.isSystem {
		p.logger.Warn("system app attempted button subscription; ignored")
		return
	}
	p.buttonCallback = cb
	p.buttonContext = context
}

// SubscribeTick registers the callback invoked for every Tick message.
func (p *Pump) SubscribeTick(cb events.TickCallback) {
	p.tickCallback = cb
}

// Run is the guest task's body: it blocks on the queue with a bounded wait
// so it can periodically re-check ctx, dispatching each message inline and
// returning the moment a Quit message arrives or ctx is cancelled.
//
// Callbacks run synchronously on the calling goroutine: a guest task is
// single-threaded, so there is never more than one callback in flight at
// a time.
func (p *Pump) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, ok := p.queue.Receive(p.recvTimeout)
		if !ok {
			continue
		}

		switch msg.Kind {
		case events.Quit:
			return
		case events.Button:
			cb := msg.ButtonCallback
			if cb == nil {
				cb = p.buttonCallback
			}
			if cb != nil {
				cb(msg.ClickRef, msg.ButtonContext)
			}
		case events.Tick:
			cb := msg.TickCallback
			if cb == nil {
				cb = p.tickCallback
			}
			if cb != nil {
				cb(msg.TickTime, msg.TickUnits)
			}
		}
	}
}
