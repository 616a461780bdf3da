// Command appmanagerd is a small demo harness: it boots an AppManager
// against an in-memory flash driver carrying one toy flash app, registers
// the three fixed internal apps, starts one, sends it a button event,
// then quits it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/appmanager"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/events"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/eventpump"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

func main() {
	logger := utils.DefaultLogger("appmanagerd")
	logger.Info("appmanagerd starting")

	driver := flash.NewMemDriver()
	programToyApp(driver)

	cfg := config.DefaultConfig()
	am := appmanager.New(driver, cfg, true, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The manifest's first three entries are always the three internal
	// apps, in this fixed order: the system menu, the idle screen, and a
	// default watch face.
	internalApps := []appmanager.InternalApp{
		{Name: "System", Type: manifest.System, Entry: systemEntry(logger)},
		{Name: "Idle", Type: manifest.System, Entry: idleEntry(logger)},
		{Name: "Simple", Type: manifest.Face, Entry: faceEntry(logger)},
	}

	accepted, rejected := am.Boot(ctx, driver, internalApps)
	logger.Info("boot scan complete", utils.Int("accepted", accepted), utils.Int("rejected", rejected))

	if err := am.Controller.Start("Simple"); err != nil {
		fmt.Println("start failed:", err)
		os.Exit(1)
	}
	logger.Info("current app", utils.String("name", am.Controller.Current()))

	if err := am.Controller.PostButton(0, nil); err != nil {
		fmt.Println("post button failed:", err)
	}

	time.Sleep(50 * time.Millisecond)

	if err := am.Controller.Quit(); err != nil {
		fmt.Println("quit failed:", err)
	}

	time.Sleep(50 * time.Millisecond)
	am.Controller.Stop()
	logger.Info("appmanagerd exiting")
}

// systemEntry is the host-linked body of the always-present menu app.
func systemEntry(logger *utils.Logger) manifest.EntryFunc {
	return func(p *eventpump.Pump) {
		p.SubscribeTick(func(t time.Time, unit events.TickUnit) {
			logger.Debug("system tick", utils.Any("unit", unit))
		})
	}
}

// idleEntry is the host-linked body of the idle screen shown when no other
// app is running; it has no button handler of its own.
func idleEntry(logger *utils.Logger) manifest.EntryFunc {
	return func(p *eventpump.Pump) {
		p.SubscribeTick(func(t time.Time, unit events.TickUnit) {
			logger.Debug("idle tick", utils.Any("unit", unit))
		})
	}
}

// faceEntry is the host-linked body of a minimal watch face.
func faceEntry(logger *utils.Logger) manifest.EntryFunc {
	return func(p *eventpump.Pump) {
		p.SubscribeButton(func(clickRef int, context interface{}) {
			logger.Info("face got button", utils.Int("click_ref", clickRef))
		}, nil)
	}
}

// programToyApp writes a minimal, valid flash app into slot 0: no
// relocations, a few bytes of payload, and 64 bytes of BSS beyond app size.
func programToyApp(driver *flash.MemDriver) {
	appSize := uint32(16)
	hdr := &flash.Header{
		SDKVersion:        flash.VersionPair{Major: 4, Minor: 0},
		AppVersion:        flash.VersionPair{Major: 1, Minor: 0},
		AppSize:           appSize,
		Offset:            0,
		Name:              "ToyApp",
		Company:           "Demo",
		RelocEntriesCount: 0,
		VirtualSize:       appSize + 64,
	}
	copy(hdr.Magic[:], []byte(config.AppMagic))

	payload := make([]byte, appSize)
	for i := range payload {
		payload[i] = byte(i)
	}
	hdr.CRC = flash.Checksum(payload)

	raw := append(flash.EncodeHeader(hdr), payload...)
	driver.Program(0, raw)
}
