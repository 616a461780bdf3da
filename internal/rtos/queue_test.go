package rtos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/apperr"
)

func TestQueue_SendReceive(t *testing.T) {
	q := NewQueue[int](2)
	require.NoError(t, q.Send(1, time.Millisecond))
	require.NoError(t, q.Send(2, time.Millisecond))

	v, ok := q.Receive(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestQueue_SendTimesOutWhenFull(t *testing.T) {
	q := NewQueue[int](1)
	require.NoError(t, q.Send(1, time.Millisecond))

	err := q.Send(2, 5*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.Full))
}

func TestQueue_TrySendNeverBlocks(t *testing.T) {
	q := NewQueue[int](1)
	assert.True(t, q.TrySend(1))
	assert.False(t, q.TrySend(2))
}

func TestQueue_ReceiveTimesOutWhenEmpty(t *testing.T) {
	q := NewQueue[int](1)
	_, ok := q.Receive(2 * time.Millisecond)
	assert.False(t, ok)
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[int](3)
	q.TrySend(1)
	q.TrySend(2)
	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_ReceiveCtxCancel(t *testing.T) {
	q := NewQueue[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.ReceiveCtx(ctx)
	assert.False(t, ok)
}
