package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
)

func programApp(t *testing.T, driver *flash.MemDriver, slot int, name string, appSize uint32, breakCRC bool) {
	t.Helper()
	h := &flash.Header{AppSize: appSize, Name: name, VirtualSize: appSize + 32}
	copy(h.Magic[:], []byte(config.AppMagic))
	payload := make([]byte, appSize)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	h.CRC = flash.Checksum(payload)
	if breakCRC {
		h.CRC ^= 0xFFFFFFFF
	}
	driver.Program(slot, append(flash.EncodeHeader(h), payload...))
}

func TestScanner_AcceptsValidSlots(t *testing.T) {
	driver := flash.NewMemDriver()
	programApp(t, driver, 0, "Alpha", 16, false)
	programApp(t, driver, 2, "Beta", 8, false)

	m := manifest.New()
	sc := NewScanner(driver, 4, nil)
	accepted, rejected := sc.Scan(m, false)

	require.Equal(t, 2, accepted)
	assert.Equal(t, 2, rejected)
	assert.Len(t, m.All(), 2)
}

func TestScanner_CRCCheckRejectsTamperedSlot(t *testing.T) {
	driver := flash.NewMemDriver()
	programApp(t, driver, 0, "Alpha", 16, true)

	m := manifest.New()
	sc := NewScanner(driver, 1, nil)
	accepted, rejected := sc.Scan(m, true)

	assert.Equal(t, 0, accepted)
	assert.Equal(t, 1, rejected)
}

func TestScanner_BlankSlotsRejected(t *testing.T) {
	driver := flash.NewMemDriver()
	m := manifest.New()
	sc := NewScanner(driver, 4, nil)
	accepted, rejected := sc.Scan(m, false)

	assert.Equal(t, 0, accepted)
	assert.Equal(t, 4, rejected)
}
