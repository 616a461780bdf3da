package rtos

// Entry is a task's top-level function, analogous to a guest application's
// `main`.
type Entry func()

// Task is a handle to a spawned task.
type Task interface {
	// Delete performs the unconditional, hard termination the lifecycle
	// controller falls back to before spawning a replacement guest when
	// cooperative quit times out.
	// It does not run any teardown the task registered — a goroutine has
	// no kill primitive, so a non-cooperative Entry that never returns
	// simply keeps running in the background, orphaned from its Task
	// handle, exactly as a real RTOS force-delete leaks resources the
	// guest held outside the arena.
	Delete()

	// Alive reports whether the task is still believed to be running.
	// It goes false the moment Delete is called or the entry returns on
	// its own, whichever happens first.
	Alive() bool
}

// Priority levels, expressed as offsets from an idle baseline.
const (
	PriorityIdle       = 0
	PriorityController = PriorityIdle + 5
	PriorityGuest      = PriorityIdle + 6
)

// Spawner creates preemptive tasks. It is an external collaborator: the
// application manager never calls the underlying scheduler directly.
type Spawner interface {
	Spawn(entry Entry, priority int) (Task, error)
}

// goroutineTask is the reference Task returned by GoroutineSpawner.
type goroutineTask struct {
	done    chan struct{}
	deleted chan struct{}
}

func (t *goroutineTask) Delete() {
	select {
	case <-t.deleted:
	default:
		close(t.deleted)
	}
}

func (t *goroutineTask) Alive() bool {
	select {
	case <-t.deleted:
		return false
	default:
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// GoroutineSpawner is the host-side reference Spawner: every task is a
// goroutine. Priority is recorded but not enforced — Go's scheduler has no
// preemptive-priority concept, so this field exists purely so call sites
// read the same as the embedded target's task-creation call.
type GoroutineSpawner struct{}

// Spawn launches entry on its own goroutine and returns a handle to it.
func (GoroutineSpawner) Spawn(entry Entry, priority int) (Task, error) {
	t := &goroutineTask{
		done:    make(chan struct{}),
		deleted: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		entry()
	}()
	return t, nil
}
