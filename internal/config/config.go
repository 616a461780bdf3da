// Package config centralizes the sizing and timing constants the rest of
// the application manager is built against, the way KernelConfig
// (kernel/lifecycle.go) centralizes threading and cache sizing instead of
// scattering literals across call sites.
package config

import (
	"time"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

const (
	// WordSize is the width, in bytes, of one arena word.
	WordSize = 4

	// FlashSlotCount is the number of flash slots scanned at boot (0..31).
	FlashSlotCount = 32

	// AppMagic is the required 6-byte magic prefix of a valid app header.
	AppMagic = "PBLAPP"
)

// Config holds the sizing and timing knobs every component is parameterized
// by, built once at boot and passed down by reference.
type Config struct {
	// MaxAppMemorySize is the total size, in bytes, of the single
	// process-wide arena shared by all guest generations.
	MaxAppMemorySize uint32

	// MaxAppStackWords is the number of 4-byte words at the top of the
	// arena reserved for the guest's stack.
	MaxAppStackWords uint32

	// FlashSlotCount is the number of slots the scanner walks.
	FlashSlotCount int

	// StartSendTimeout bounds how long start() blocks enqueuing onto the
	// controller's thread queue.
	StartSendTimeout time.Duration

	// QuitSendTimeout bounds how long quit() blocks enqueuing onto msg_q.
	QuitSendTimeout time.Duration

	// ButtonSendTimeout bounds how long post_button blocks enqueuing onto msg_q.
	ButtonSendTimeout time.Duration

	// EventReceiveTimeout bounds how long the event pump blocks waiting
	// for the next message before re-checking for shutdown.
	EventReceiveTimeout time.Duration

	// MsgQueueCapacity is the capacity of msg_q (UI events).
	MsgQueueCapacity int

	// ThreadQueueCapacity is the capacity of thread_q (start requests).
	ThreadQueueCapacity int

	LogLevel utils.LogLevel
}

// DefaultConfig returns the production sizing: a 64KiB arena with a 2KiB
// (512-word) guest stack, and the 100-tick/10-tick start/quit send
// timeouts expressed as wall-clock bounds for a host-side reference RTOS.
func DefaultConfig() *Config {
	return &Config{
		MaxAppMemorySize:    64 * 1024,
		MaxAppStackWords:    512,
		FlashSlotCount:      FlashSlotCount,
		StartSendTimeout:    100 * time.Millisecond,
		QuitSendTimeout:     10 * time.Millisecond,
		ButtonSendTimeout:   10 * time.Millisecond,
		EventReceiveTimeout: time.Second,
		MsgQueueCapacity:    5,
		ThreadQueueCapacity: 1,
		LogLevel:            utils.INFO,
	}
}

// StackBytes is the number of bytes the guest stack occupies at the top of
// the arena.
func (c *Config) StackBytes() uint32 {
	return c.MaxAppStackWords * WordSize
}
