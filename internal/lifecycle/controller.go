// Package lifecycle implements the application manager's C4 component: the
// single controller task that enforces the "at most one guest task alive"
// invariant across every start/quit transition. It owns two bounded
// queues — thread_q (capacity 1, start requests)
// and msg_q (capacity 5, UI events) — and serializes every transition
// through a single goroutine, the same shape as BaseSupervisor's
// worker loop draining one job queue at a time
// (kernel/threads/supervisor/base.go), generalized here from "one job type"
// to "start vs. quit vs. button vs. tick".
package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/apperr"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/arena"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/eventpump"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/events"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/loader"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/metrics"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/rtos"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

// startRequest is what Start posts onto thread_q. The uuid tags the
// dropped-request warning and the controller's start-failure line, so a
// failed request can be told apart even when several queue up back to
// back; the "started app" line does not carry it.
type startRequest struct {
	id   string
	name string
	resp chan error
}

// runningApp tracks the single guest task generation currently alive.
type runningApp struct {
	record *manifest.Record
	task   rtos.Task
	cancel context.CancelFunc
}

// Controller is the C4 lifecycle state machine. One Controller exists per
// application manager instance.
type Controller struct {
	manifest *manifest.Manifest
	loader   *loader.Loader
	arena    *arena.Arena
	spawner  rtos.Spawner
	cfg      *config.Config
	metrics  *metrics.Metrics
	logger   *utils.Logger
	sym      uintptr

	threadQ *rtos.Queue[startRequest]
	msgQ    *rtos.Queue[events.Message]

	mu      sync.Mutex
	current *runningApp

	loopCancel context.CancelFunc
}

// New constructs a Controller. sym is the host address of the symbol table
// published to every flash-loaded guest after relocation and BSS zeroing.
func New(
	m *manifest.Manifest,
	ld *loader.Loader,
	a *arena.Arena,
	spawner rtos.Spawner,
	cfg *config.Config,
	met *metrics.Metrics,
	sym uintptr,
	logger *utils.Logger,
) *Controller {
	if logger == nil {
		logger = utils.DefaultLogger("lifecycle")
	}
	return &Controller{
		manifest: m,
		loader:   ld,
		arena:    a,
		spawner:  spawner,
		cfg:      cfg,
		metrics:  met,
		logger:   logger,
		sym:      sym,
		threadQ:  rtos.NewQueue[startRequest](cfg.ThreadQueueCapacity),
		msgQ:     rtos.NewQueue[events.Message](cfg.MsgQueueCapacity),
	}
}

// Run starts the controller task's own goroutine, which owns every mutation
// of the running guest generation. It must be called once, at boot, before
// any Start/Quit/PostButton/PostTick call.
func (c *Controller) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.loopCancel = cancel
	go c.loop(ctx)
}

// Stop cancels the controller task loop. It does not quit whatever guest is
// currently running.
func (c *Controller) Stop() {
	if c.loopCancel != nil {
		c.loopCancel()
	}
}

func (c *Controller) loop(ctx context.Context) {
	for {
		req, ok := c.threadQ.ReceiveCtx(ctx)
		if !ok {
			return
		}
		err := c.doStart(ctx, req.name)
		if err != nil {
			c.logger.Error("start failed", utils.String("name", req.name), utils.String("request_id", req.id), utils.Err(err))
		}
		if req.resp != nil {
			req.resp <- err
		}
	}
}

// Start requests a transition to the named app. It first posts a quit onto
// msg_q — best-effort, since this is how the currently-running guest is
// asked to exit so the controller task can proceed —
// then enqueues the actual start request onto thread_q with a
// StartSendTimeout bound, and blocks until the controller task has fully
// completed the transition. Posting the quit and enqueueing the start
// request are not atomic: a request that times out on thread_q still
// leaves the quit posted, a partial-failure window callers should expect
// under sustained queue pressure.
func (c *Controller) Start(name string) error {
	c.msgQ.TrySend(events.NewQuit())

	req := startRequest{id: uuid.NewString(), name: name, resp: make(chan error, 1)}
	if err := c.threadQ.Send(req, c.cfg.StartSendTimeout); err != nil {
		c.metrics.StartErrorsTotal.WithLabelValues(apperr.EFull.String()).Inc()
		c.logger.Warn("start request dropped, thread_q full", utils.String("name", name), utils.String("request_id", req.id))
		return err
	}
	return <-req.resp
}

// doStart runs on the controller goroutine only.
func (c *Controller) doStart(ctx context.Context, name string) error {
	rec := c.manifest.Lookup(name)
	if rec == nil {
		c.metrics.StartErrorsTotal.WithLabelValues(apperr.ENoApp.String()).Inc()
		return apperr.New(apperr.ENoApp, "no manifest entry for \""+name+"\"", nil)
	}

	c.terminateCurrent()
	c.msgQ.Drain()

	genCtx, cancel := context.WithCancel(ctx)

	var entry rtos.Entry
	if rec.IsInternal {
		pump := eventpump.New(c.msgQ, c.cfg.EventReceiveTimeout, rec.Type == manifest.System, c.logger.With("pump:"+rec.Name))
		guestEntry := rec.Entry
		entry = func() {
			guestEntry(pump)
			pump.Run(genCtx)
		}
	} else {
		result, err := c.loader.Load(rec.SlotID, c.arena, c.sym)
		if err != nil {
			cancel()
			c.metrics.StartErrorsTotal.WithLabelValues(kindOf(err).String()).Inc()
			return err
		}
		rec.Header = result.Header
		pump := eventpump.New(c.msgQ, c.cfg.EventReceiveTimeout, rec.Type == manifest.System, c.logger.With("pump:"+rec.Name))
		// The host cannot jump to an arbitrary relocated byte offset as
		// code; the generic fallback models a flash app's first
		// instruction calling straight into the published event loop
		// through the installed symbol table.
		entry = func() {
			pump.Run(genCtx)
		}
	}

	task, err := c.spawner.Spawn(entry, rtos.PriorityGuest)
	if err != nil {
		cancel()
		c.metrics.StartErrorsTotal.WithLabelValues(apperr.ELoad.String()).Inc()
		return apperr.WrapError(err, "spawn guest task")
	}

	c.mu.Lock()
	c.current = &runningApp{record: rec, task: task, cancel: cancel}
	c.mu.Unlock()

	c.metrics.StartsTotal.Inc()
	c.metrics.GuestTaskAlive.Set(1)
	c.logger.Info("started app", utils.String("name", rec.Name), utils.String("type", rec.Type.String()))
	return nil
}

// terminateCurrent waits up to QuitSendTimeout for the guest Start already
// signaled quit to exit cooperatively, retrying the quit post in case the
// first one was dropped, then force-deletes it — the force-delete hazard:
// a non-cooperative guest is abandoned rather than awaited forever.
func (c *Controller) terminateCurrent() {
	c.mu.Lock()
	cur := c.current
	c.current = nil
	c.mu.Unlock()

	if cur == nil {
		return
	}

	c.msgQ.TrySend(events.NewQuit())
	cur.cancel()

	deadline := time.Now().Add(c.cfg.QuitSendTimeout)
	for time.Now().Before(deadline) {
		if !cur.task.Alive() {
			c.metrics.QuitsTotal.Inc()
			c.metrics.GuestTaskAlive.Set(0)
			return
		}
		time.Sleep(time.Millisecond)
	}

	c.logger.Warn("force-deleting unresponsive guest task", utils.String("name", cur.record.Name))
	cur.task.Delete()
	c.metrics.QuitsTotal.Inc()
	c.metrics.GuestTaskAlive.Set(0)
}

// Quit requests termination of whatever app is currently running, without
// starting a replacement. It is the bounded (10-tick) send used for the
// home-button path.
func (c *Controller) Quit() error {
	if err := c.msgQ.Send(events.NewQuit(), c.cfg.QuitSendTimeout); err != nil {
		c.metrics.QueueDroppedTotal.WithLabelValues("msg_q").Inc()
		c.logger.Warn("quit dropped, msg_q full", utils.Err(err))
		return err
	}
	return nil
}

// PostButton enqueues a button event for the running app, bounded by
// ButtonSendTimeout. Use PostButtonISR from interrupt context instead.
func (c *Controller) PostButton(clickRef int, appContext interface{}) error {
	if err := c.msgQ.Send(events.NewButton(nil, clickRef, appContext), c.cfg.ButtonSendTimeout); err != nil {
		c.metrics.QueueDroppedTotal.WithLabelValues("msg_q").Inc()
		c.logger.Warn("button event dropped, msg_q full", utils.Int("click_ref", clickRef), utils.Err(err))
		return err
	}
	return nil
}

// PostButtonISR is the non-blocking variant safe to call from interrupt
// context: interrupt-context posts never suspend. It returns false if
// msg_q was full.
func (c *Controller) PostButtonISR(clickRef int, appContext interface{}) bool {
	ok := c.msgQ.TrySend(events.NewButton(nil, clickRef, appContext))
	if !ok {
		c.metrics.QueueDroppedTotal.WithLabelValues("msg_q").Inc()
	}
	return ok
}

// PostTick enqueues a tick event for the running app.
func (c *Controller) PostTick(t time.Time, unit events.TickUnit) error {
	if err := c.msgQ.Send(events.NewTick(nil, t, unit), c.cfg.ButtonSendTimeout); err != nil {
		c.metrics.QueueDroppedTotal.WithLabelValues("msg_q").Inc()
		c.logger.Warn("tick event dropped, msg_q full", utils.Err(err))
		return err
	}
	return nil
}

// PostTickISR is the non-blocking variant safe to call from interrupt
// context. It returns false if msg_q was full.
func (c *Controller) PostTickISR(t time.Time, unit events.TickUnit) bool {
	ok := c.msgQ.TrySend(events.NewTick(nil, t, unit))
	if !ok {
		c.metrics.QueueDroppedTotal.WithLabelValues("msg_q").Inc()
	}
	return ok
}

// Current returns the name of the currently running app, or "" if none.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.record.Name
}

func kindOf(err error) apperr.Kind {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return apperr.ELoad
}
