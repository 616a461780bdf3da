// Package flash models the application manager's two external
// collaborators at the storage boundary: the raw header/body layout
// written to each flash slot, and the Driver interface the block driver
// must satisfy. Parsing follows a binary.LittleEndian,
// fixed-offset decoding style (kernel/threads/registry/loader.go
// readEnhancedEntry) rather than reflection-based struct tags.
package flash

import (
	"encoding/binary"
	"fmt"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
)

// Field widths and offsets within the serialized header, in on-flash
// layout order.
const (
	nameLen    = 32
	companyLen = 32

	offMagic      = 0
	offSDKMajor    = offMagic + 6
	offSDKMinor    = offSDKMajor + 1
	offAppMajor    = offSDKMinor + 1
	offAppMinor    = offAppMajor + 1
	offAppSize     = offAppMinor + 1
	offEntryOffset = offAppSize + 4
	offCRC         = offEntryOffset + 4
	offName        = offCRC + 4
	offCompany     = offName + nameLen
	offIcon        = offCompany + companyLen
	offSymTable    = offIcon + 2
	offFlags       = offSymTable + 4
	offRelocCount  = offFlags + 4
	offVirtualSize = offRelocCount + 4

	// HeaderSize is the exact on-flash size of an ApplicationHeader.
	HeaderSize = offVirtualSize + 4
)

// VersionPair is a {major, minor} version tuple, as stored in the header.
type VersionPair struct {
	Major uint8
	Minor uint8
}

// Header is the bit-exact application header, decoded from flash.
type Header struct {
	Magic             [6]byte
	SDKVersion        VersionPair
	AppVersion        VersionPair
	AppSize           uint32
	Offset            uint32
	CRC               uint32
	Name              string
	Company           string
	IconResourceID    uint16
	SymTableAddr      uint32
	Flags             uint32
	RelocEntriesCount uint32
	VirtualSize       uint32
}

// HasValidMagic reports whether the first six bytes equal the required
// "PBLAPP" magic.
func (h *Header) HasValidMagic() bool {
	return string(h.Magic[:]) == config.AppMagic
}

// ParseHeader decodes a HeaderSize-byte little-endian buffer into a Header.
// It never validates the magic or CRC — callers (the scanner, the loader)
// decide what to do with an invalid header.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("flash: header buffer too short: have %d want %d", len(buf), HeaderSize)
	}

	h := &Header{}
	copy(h.Magic[:], buf[offMagic:offMagic+6])
	h.SDKVersion = VersionPair{Major: buf[offSDKMajor], Minor: buf[offSDKMinor]}
	h.AppVersion = VersionPair{Major: buf[offAppMajor], Minor: buf[offAppMinor]}
	h.AppSize = binary.LittleEndian.Uint32(buf[offAppSize:])
	h.Offset = binary.LittleEndian.Uint32(buf[offEntryOffset:])
	h.CRC = binary.LittleEndian.Uint32(buf[offCRC:])
	h.Name = cString(buf[offName : offName+nameLen])
	h.Company = cString(buf[offCompany : offCompany+companyLen])
	h.IconResourceID = binary.LittleEndian.Uint16(buf[offIcon:])
	h.SymTableAddr = binary.LittleEndian.Uint32(buf[offSymTable:])
	h.Flags = binary.LittleEndian.Uint32(buf[offFlags:])
	h.RelocEntriesCount = binary.LittleEndian.Uint32(buf[offRelocCount:])
	h.VirtualSize = binary.LittleEndian.Uint32(buf[offVirtualSize:])

	return h, nil
}

// EncodeHeader serializes h back into a HeaderSize-byte little-endian
// buffer. Used by tests and the demo command to build flash fixtures.
func EncodeHeader(h *Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[offMagic:], h.Magic[:])
	buf[offSDKMajor] = h.SDKVersion.Major
	buf[offSDKMinor] = h.SDKVersion.Minor
	buf[offAppMajor] = h.AppVersion.Major
	buf[offAppMinor] = h.AppVersion.Minor
	binary.LittleEndian.PutUint32(buf[offAppSize:], h.AppSize)
	binary.LittleEndian.PutUint32(buf[offEntryOffset:], h.Offset)
	binary.LittleEndian.PutUint32(buf[offCRC:], h.CRC)
	copy(buf[offName:], []byte(h.Name))
	copy(buf[offCompany:], []byte(h.Company))
	binary.LittleEndian.PutUint16(buf[offIcon:], h.IconResourceID)
	binary.LittleEndian.PutUint32(buf[offSymTable:], h.SymTableAddr)
	binary.LittleEndian.PutUint32(buf[offFlags:], h.Flags)
	binary.LittleEndian.PutUint32(buf[offRelocCount:], h.RelocEntriesCount)
	binary.LittleEndian.PutUint32(buf[offVirtualSize:], h.VirtualSize)
	return buf
}

// cString trims a fixed-width buffer at its first NUL byte.
func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
