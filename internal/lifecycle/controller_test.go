package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/apperr"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/arena"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/events"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/eventpump"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/loader"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/metrics"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/rtos"
)

func testController(t *testing.T, m *manifest.Manifest) *Controller {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StartSendTimeout = 50 * time.Millisecond
	cfg.QuitSendTimeout = 10 * time.Millisecond
	cfg.ButtonSendTimeout = 5 * time.Millisecond

	a := arena.New(cfg.MaxAppMemorySize)
	ld := loader.New(flash.NewMemDriver(), cfg, true, nil)
	ctrl := New(m, ld, a, rtos.GoroutineSpawner{}, cfg, metrics.New(), 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ctrl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		ctrl.Stop()
	})
	return ctrl
}

func noopTickEntry(p *eventpump.Pump) {}

// TestController_S1InternalStart covers S1: starting an internal SYSTEM app
// brings up a guest task running under the expected name.
func TestController_S1InternalStart(t *testing.T) {
	m := manifest.New()
	m.Add(&manifest.Record{Name: "System", Type: manifest.System, Entry: noopTickEntry, IsInternal: true})

	ctrl := testController(t, m)
	require.NoError(t, ctrl.Start("System"))
	assert.Equal(t, "System", ctrl.Current())
}

// TestController_S2SwitchViaButton covers S2: a button handler calling
// Start from inside the running guest forces out the old task (via the
// documented force-delete hazard) and brings up the new one.
func TestController_S2SwitchViaButton(t *testing.T) {
	m := manifest.New()
	m.Add(&manifest.Record{Name: "System", Type: manifest.System, Entry: noopTickEntry, IsInternal: true})
	m.Add(&manifest.Record{Name: "Simple", Type: manifest.Face, Entry: noopTickEntry, IsInternal: true})

	ctrl := testController(t, m)
	require.NoError(t, ctrl.Start("System"))
	require.Equal(t, "System", ctrl.Current())

	// A SYSTEM app's menu dispatch is modeled as a button message whose
	// own callback (not a per-app subscription) triggers the switch.
	switchCallback := func(clickRef int, appContext interface{}) {
		_ = ctrl.Start("Simple")
	}
	require.NoError(t, ctrl.msgQ.Send(events.NewButton(switchCallback, 0, nil), time.Millisecond))

	assert.Eventually(t, func() bool {
		return ctrl.Current() == "Simple"
	}, 2*time.Second, time.Millisecond)
}

// TestController_S5MissingApp covers S5: starting an unknown name returns
// ENOAPP and leaves the system startable afterward.
func TestController_S5MissingApp(t *testing.T) {
	m := manifest.New()
	m.Add(&manifest.Record{Name: "System", Type: manifest.System, Entry: noopTickEntry, IsInternal: true})

	ctrl := testController(t, m)
	err := ctrl.Start("NoSuch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.NoApp))
	assert.Equal(t, "", ctrl.Current())

	require.NoError(t, ctrl.Start("System"))
	assert.Equal(t, "System", ctrl.Current())
}

// TestController_S6ISRTickBurst covers S6: ten ISR tick posts during a busy
// callback fill msg_q's capacity of 5; the other five are dropped, and
// exactly five tick callbacks fire, in post order, once the guest returns.
func TestController_S6ISRTickBurst(t *testing.T) {
	m := manifest.New()

	var mu sync.Mutex
	var received []int64
	started := make(chan struct{})
	release := make(chan struct{})

	entry := func(p *eventpump.Pump) {
		p.SubscribeTick(func(tm time.Time, unit events.TickUnit) {
			idx := tm.Unix()
			if idx == 999 {
				close(started)
				<-release
			}
			mu.Lock()
			received = append(received, idx)
			mu.Unlock()
		})
	}
	m.Add(&manifest.Record{Name: "Busy", Type: manifest.Watchapp, Entry: entry, IsInternal: true})

	ctrl := testController(t, m)
	require.NoError(t, ctrl.Start("Busy"))

	require.NoError(t, ctrl.PostTick(time.Unix(999, 0), events.Second))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("busy callback never started")
	}

	accepted := 0
	for i := int64(0); i < 10; i++ {
		if ctrl.PostTickISR(time.Unix(i, 0), events.Second) {
			accepted++
		}
	}
	assert.Equal(t, 5, accepted)

	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 6
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 6)
	assert.Equal(t, []int64{999, 0, 1, 2, 3, 4}, received)
}
