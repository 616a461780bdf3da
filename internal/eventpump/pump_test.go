package eventpump

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/events"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/rtos"
)

func TestPump_DispatchesButtonToSubscribedCallback(t *testing.T) {
	q := rtos.NewQueue[events.Message](5)
	p := New(q, 10*time.Millisecond, false, nil)

	received := make(chan int, 1)
	p.SubscribeButton(func(clickRef int, context interface{}) {
		received <- clickRef
	}, nil)

	require.NoError(t, q.Send(events.NewButton(nil, 3, nil), time.Millisecond))
	require.NoError(t, q.Send(events.NewQuit(), time.Millisecond))

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	select {
	case ref := <-received:
		assert.Equal(t, 3, ref)
	case <-time.After(time.Second):
		t.Fatal("button callback never fired")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump never returned after quit")
	}
}

func TestPump_SystemAppIgnoresButtonSubscription(t *testing.T) {
	q := rtos.NewQueue[events.Message](1)
	p := New(q, time.Millisecond, true, nil)

	called := false
	p.SubscribeButton(func(clickRef int, context interface{}) { called = true }, nil)

	require.NoError(t, q.Send(events.NewButton(nil, 1, nil), time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.False(t, called)
}

func TestPump_TickDispatch(t *testing.T) {
	q := rtos.NewQueue[events.Message](2)
	p := New(q, time.Millisecond, false, nil)

	fired := make(chan events.TickUnit, 1)
	p.SubscribeTick(func(tm time.Time, unit events.TickUnit) { fired <- unit })

	require.NoError(t, q.Send(events.NewTick(nil, time.Now(), events.Minute), time.Millisecond))
	require.NoError(t, q.Send(events.NewQuit(), time.Millisecond))

	p.Run(context.Background())

	select {
	case unit := <-fired:
		assert.Equal(t, events.Minute, unit)
	default:
		t.Fatal("tick callback never fired")
	}
}

func TestPump_RunReturnsOnContextCancel(t *testing.T) {
	q := rtos.NewQueue[events.Message](1)
	p := New(q, 5*time.Millisecond, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump never returned after context cancel")
	}
}
