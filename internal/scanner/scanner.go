// Package scanner implements the application manager's C2 component: it
// enumerates a fixed range of flash slots and appends every slot with a
// valid header to the manifest. It is a separate package from flash (which
// owns only the wire format and the Driver contract) so that flash never
// has to import manifest back.
package scanner

import (
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/flash"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/manifest"
	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/utils"
)

// Scanner walks a fixed range of flash slots, validating and registering
// each one.
type Scanner struct {
	driver flash.Driver
	slots  int
	logger *utils.Logger
}

// NewScanner creates a scanner over the given driver, walking slots
// [0, slots).
func NewScanner(driver flash.Driver, slots int, logger *utils.Logger) *Scanner {
	if logger == nil {
		logger = utils.DefaultLogger("scanner")
	}
	return &Scanner{driver: driver, slots: slots, logger: logger}
}

// Scan walks every slot and appends one Record per slot whose header bears
// the "PBLAPP" magic. CRC verification is optional at this stage; when
// checkCRC is true, a slot whose body fails its
// checksum is skipped and logged rather than appended. A loader built with
// its own checkCRC set re-verifies (and re-rejects) the payload at start
// time regardless of what checkCRC was set to here.
func (s *Scanner) Scan(m *manifest.Manifest, checkCRC bool) (accepted int, rejected int) {
	for slot := 0; slot < s.slots; slot++ {
		hdr, err := s.driver.ReadHeader(slot)
		if err != nil {
			s.logger.Debug("slot unreadable", utils.Int("slot", slot), utils.Err(err))
			rejected++
			continue
		}

		if !hdr.HasValidMagic() {
			rejected++
			continue
		}

		if checkCRC {
			body, err := s.driver.ReadBody(slot, int(hdr.AppSize))
			if err != nil {
				s.logger.Warn("slot CRC check: body unreadable", utils.Int("slot", slot), utils.Err(err))
				rejected++
				continue
			}
			if flash.Checksum(body) != hdr.CRC {
				s.logger.Warn("slot CRC mismatch, skipping", utils.Int("slot", slot), utils.String("name", hdr.Name))
				rejected++
				continue
			}
		}

		rec := toRecord(slot, hdr)
		m.Add(rec)
		s.logger.Info("accepted flash app", utils.Int("slot", slot), utils.String("name", hdr.Name))
		accepted++
	}

	return accepted, rejected
}

// toRecord builds the manifest.Record for an accepted flash slot. Type
// refinement from header flags is a documented TODO and is not required
// for correctness: every flash app is provisionally FACE until a future
// revision reads the type out of Header.Flags.
func toRecord(slot int, hdr *flash.Header) *manifest.Record {
	return &manifest.Record{
		Name:       hdr.Name,
		Type:       manifest.Face,
		Entry:      nil,
		IsInternal: false,
		SlotID:     slot,
		Header:     hdr,
	}
}
