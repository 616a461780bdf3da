// Package rtos models task creation/deletion and counting queues as
// external collaborators behind a small Go API over channels, the same way
// the teacher isolates its own memory-mapped primitive — the SAB-backed
// MessageQueue (kernel/threads/foundation/message_queue.go) — behind
// Enqueue/Dequeue methods instead of inlining atomics everywhere it's
// needed. Tasks sit behind the Spawner and Task interfaces; Queue is a
// concrete channel-backed type. There is no separate tick timebase: every
// timeout is a time.Duration. The implementation here is a channel-backed
// reference suitable for host-side tests and simulation.
package rtos

import (
	"context"
	"time"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/apperr"
)

// Queue is a bounded FIFO with blocking and non-blocking send variants,
// modeling a counting RTOS queue of capacity cap(ch).
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Send enqueues v, blocking up to timeout for room. It returns an
// apperr-wrapped EFull error on timeout.
func (q *Queue[T]) Send(v T, timeout time.Duration) error {
	select {
	case q.ch <- v:
		return nil
	case <-time.After(timeout):
		return apperr.New(apperr.EFull, "queue send timed out", nil)
	}
}

// TrySend is the ISR-safe variant: it never blocks, returning false
// immediately if the queue is full. Interrupt-context posts must never
// suspend the caller.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Receive blocks up to timeout for the next element.
func (q *Queue[T]) Receive(timeout time.Duration) (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	case <-time.After(timeout):
		var zero T
		return zero, false
	}
}

// ReceiveCtx blocks indefinitely for the next element or until ctx is
// cancelled, modeling the controller task's infinite wait on thread_q.
func (q *Queue[T]) ReceiveCtx(ctx context.Context) (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Drain removes and discards every element currently queued, without
// blocking. It is how the controller task gives the new guest a fresh
// queue on every start.
func (q *Queue[T]) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Len reports the number of elements currently queued.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}
