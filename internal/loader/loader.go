// Package loader implements the application manager's C3 component: it
// turns a flash-resident binary plus relocation metadata into an
// executable image inside the shared arena.
package loader

import (
	"fmt"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/apperr"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/arena"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

// Result describes a completed load: where the guest's entry point lives
// and how the arena was partitioned into heap and stack.
type Result struct {
	Header    *flash.Header
	Entry     uint32 // arena-relative byte offset of the guest entry function
	Partition arena.Partition
}

// Loader owns no state of its own; it is a pure function of (driver,
// arena, config, host symbol pointer) grouped into a type so it can carry
// a scoped logger, the same shape as ModuleRegistry
// (kernel/threads/registry/loader.go), which is likewise a thin façade
// over a handful of pure decode/validate helpers.
type Loader struct {
	driver flash.Driver
	cfg    *config.Config
	logger *utils.Logger
	checkCRC bool
}

// New creates a Loader over the given flash driver and config. When
// checkCRC is true (the recommended production setting), a payload
// checksum mismatch fails the load with ECRC before any arena mutation
// occurs.
func New(driver flash.Driver, cfg *config.Config, checkCRC bool, logger *utils.Logger) *Loader {
	if logger == nil {
		logger = utils.DefaultLogger("loader")
	}
	return &Loader{driver: driver, cfg: cfg, logger: logger, checkCRC: checkCRC}
}

// Load reloads the header, copies the binary and relocation table from
// flash into the arena, patches every relocation entry to an absolute
// address, zeroes BSS, and installs the symbol table pointer — the full
// sequence needed before a guest task can be spawned against the arena.
// sym is the host address of the published symbol table to install at
// header.SymTableAddr.
func (l *Loader) Load(slot int, a *arena.Arena, sym uintptr) (*Result, error) {
	// Step 1: header reload. The manifest's cached header may be stale or
	// absent, so the loader always re-reads from flash.
	hdr, err := l.driver.ReadHeader(slot)
	if err != nil {
		return nil, apperr.New(apperr.ELoad, fmt.Sprintf("read header for slot %d", slot), err)
	}
	if !hdr.HasValidMagic() {
		return nil, apperr.New(apperr.ELoad, fmt.Sprintf("slot %d: bad magic", slot), nil)
	}

	stackBytes := l.cfg.StackBytes()
	if uint64(hdr.VirtualSize)+uint64(stackBytes) > uint64(l.cfg.MaxAppMemorySize) {
		return nil, apperr.New(apperr.ETooBig, fmt.Sprintf(
			"slot %d: virtual_size %d + stack %d exceeds arena %d",
			slot, hdr.VirtualSize, stackBytes, l.cfg.MaxAppMemorySize), nil)
	}
	if hdr.VirtualSize < hdr.AppSize {
		return nil, apperr.New(apperr.ETooBig, fmt.Sprintf(
			"slot %d: virtual_size %d smaller than app_size %d", slot, hdr.VirtualSize, hdr.AppSize), nil)
	}

	// Step 2: payload copy. The binary is followed in flash by its
	// relocation table (reloc_entries_count * 4 bytes).
	relocBytes := hdr.RelocEntriesCount * 4
	payloadLen := hdr.AppSize + relocBytes
	payload, err := l.driver.ReadBody(slot, int(payloadLen))
	if err != nil {
		return nil, apperr.New(apperr.ELoad, fmt.Sprintf("read body for slot %d", slot), err)
	}
	if uint32(len(payload)) != payloadLen {
		return nil, apperr.New(apperr.ELoad, fmt.Sprintf(
			"slot %d: short read, got %d want %d", slot, len(payload), payloadLen), nil)
	}

	if l.checkCRC {
		if flash.Checksum(payload[:hdr.AppSize]) != hdr.CRC {
			return nil, apperr.New(apperr.ECRC, fmt.Sprintf("slot %d: checksum mismatch", slot), nil)
		}
	}

	if err := a.CopyFromFlash(0, payload); err != nil {
		return nil, apperr.WrapError(err, "payload copy")
	}

	// Step 3: relocation. The relocation table sits at arena offset
	// app_size, immediately after the binary.
	base := a.BaseAddr()
	for i := uint32(0); i < hdr.RelocEntriesCount; i++ {
		entryOffset := hdr.AppSize + i*4
		slotOffset, err := a.ReadWordLE(entryOffset)
		if err != nil {
			return nil, apperr.WrapError(err, "read relocation entry")
		}
		if uint64(slotOffset)+4 > uint64(hdr.AppSize) {
			return nil, apperr.New(apperr.EReloc, fmt.Sprintf(
				"slot %d: relocation entry %d points to %d, outside [0, %d)",
				slot, i, slotOffset, hdr.AppSize), nil)
		}
		if err := a.PatchWord(slotOffset, base); err != nil {
			return nil, apperr.WrapError(err, "patch relocation word")
		}
	}

	// Step 4: BSS zero, covering both true BSS and the now-spent
	// relocation table.
	if err := a.ZeroRange(hdr.AppSize, hdr.VirtualSize); err != nil {
		return nil, apperr.WrapError(err, "zero bss")
	}

	// Step 5: symbol pointer install — the only point the host ABI
	// crosses into the guest.
	if err := a.WriteWordLE(hdr.SymTableAddr, uint32(sym)); err != nil {
		return nil, apperr.WrapError(err, "install symbol table pointer")
	}

	// Step 6: partition the arena.
	partition := arena.Partition{
		HeapStart:  hdr.VirtualSize,
		HeapEnd:    l.cfg.MaxAppMemorySize - stackBytes,
		StackStart: l.cfg.MaxAppMemorySize - stackBytes,
		StackEnd:   l.cfg.MaxAppMemorySize,
	}

	l.logger.Info("loaded flash app",
		utils.Int("slot", slot),
		utils.String("name", hdr.Name),
		utils.Uint32("entry", hdr.Offset),
		utils.Uint32("heap_bytes", partition.HeapSize()))

	return &Result{Header: hdr, Entry: hdr.Offset, Partition: partition}, nil
}
