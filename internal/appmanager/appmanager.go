// Package appmanager wires every component (manifest, scanner, arena,
// loader, lifecycle controller, event pump, metrics, logging) into the
// single facade a host process boots, the same role kernel.Kernel plays
// over its own threads/foundation/supervisor subsystems
// (kernel/lifecycle.go).
package appmanager

import (
	"context"
	"unsafe"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/arena"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/lifecycle"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/loader"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/metrics"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/rtos"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/scanner"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

// symbolTable is a placeholder host payload published to every flash app at
// SymTableAddr. Its address is what the loader installs; its contents are
// unused on the host simulation but give the install step a real pointer
// to write, rather than a synthetic constant.
var symbolTable struct{ _ byte }

// AppManager is the top-level facade: construct one at boot, call Boot
// once to populate the manifest and start the controller task, then drive
// it through Start/PostButton/PostTick/Quit.
type AppManager struct {
	Config     *config.Config
	Manifest   *manifest.Manifest
	Arena      *arena.Arena
	Metrics    *metrics.Metrics
	Controller *lifecycle.Controller

	logger *utils.Logger
}

// New constructs an AppManager over the given flash driver. checkCRC
// controls whether the loader verifies a flash app's payload checksum when
// it is started; true is the recommended production setting. The boot-time
// scan in Boot does not verify checksums.
func New(driver flash.Driver, cfg *config.Config, checkCRC bool, logger *utils.Logger) *AppManager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = utils.DefaultLogger("appmanager")
	}

	a := arena.New(cfg.MaxAppMemorySize)
	m := manifest.New()
	met := metrics.New()
	ld := loader.New(driver, cfg, checkCRC, logger.With("loader"))
	sym := uintptr(unsafe.Pointer(&symbolTable))

	ctrl := lifecycle.New(m, ld, a, rtos.GoroutineSpawner{}, cfg, met, sym, logger.With("lifecycle"))

	return &AppManager{
		Config:     cfg,
		Manifest:   m,
		Arena:      a,
		Metrics:    met,
		Controller: ctrl,
		logger:     logger,
	}
}

// InternalApp describes a host-linked application registered before the
// flash scan runs: internal apps are always present, regardless of flash
// contents.
type InternalApp struct {
	Name  string
	Type  manifest.Type
	Entry manifest.EntryFunc
}

// Boot registers the given internal apps, scans every flash slot into the
// manifest, and starts the controller task loop. It must be called exactly
// once, before any Start/PostButton/PostTick/Quit call.
func (am *AppManager) Boot(ctx context.Context, driver flash.Driver, internalApps []InternalApp) (accepted, rejected int) {
	for _, app := range internalApps {
		am.Manifest.Add(&manifest.Record{
			Name:       app.Name,
			Type:       app.Type,
			Entry:      app.Entry,
			IsInternal: true,
		})
	}

	sc := scanner.NewScanner(driver, am.Config.FlashSlotCount, am.logger.With("scanner"))
	accepted, rejected = sc.Scan(am.Manifest, false)

	am.Controller.Run(ctx)
	am.logger.Info("boot complete",
		utils.Int("internal_apps", len(internalApps)),
		utils.Int("flash_accepted", accepted),
		utils.Int("flash_rejected", rejected))
	return accepted, rejected
}
