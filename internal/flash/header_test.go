package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/config"
)

func sampleHeader() *Header {
	h := &Header{
		SDKVersion:        VersionPair{Major: 4, Minor: 3},
		AppVersion:        VersionPair{Major: 1, Minor: 0},
		AppSize:           128,
		Offset:            16,
		CRC:               0xDEADBEEF,
		Name:              "Simple",
		Company:           "Demo Co",
		IconResourceID:    7,
		SymTableAddr:      200,
		Flags:             0,
		RelocEntriesCount: 3,
		VirtualSize:       256,
	}
	copy(h.Magic[:], []byte(config.AppMagic))
	return h
}

func TestEncodeHeaderParseHeaderRoundTrip(t *testing.T) {
	want := sampleHeader()
	buf := EncodeHeader(want)
	require.Len(t, buf, HeaderSize)

	got, err := ParseHeader(buf)
	require.NoError(t, err)

	assert.True(t, got.HasValidMagic())
	assert.Equal(t, want.SDKVersion, got.SDKVersion)
	assert.Equal(t, want.AppVersion, got.AppVersion)
	assert.Equal(t, want.AppSize, got.AppSize)
	assert.Equal(t, want.Offset, got.Offset)
	assert.Equal(t, want.CRC, got.CRC)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Company, got.Company)
	assert.Equal(t, want.IconResourceID, got.IconResourceID)
	assert.Equal(t, want.SymTableAddr, got.SymTableAddr)
	assert.Equal(t, want.RelocEntriesCount, got.RelocEntriesCount)
	assert.Equal(t, want.VirtualSize, got.VirtualSize)
}

func TestParseHeaderTooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	assert.Error(t, err)
}

func TestHasValidMagicRejectsBlankFlash(t *testing.T) {
	h, err := ParseHeader(make([]byte, HeaderSize))
	require.NoError(t, err)
	assert.False(t, h.HasValidMagic())
}

func TestChecksumDetectsTamper(t *testing.T) {
	payload := []byte("application binary bytes")
	sum := Checksum(payload)

	tampered := append([]byte{}, payload...)
	tampered[0] ^= 0xFF
	assert.NotEqual(t, sum, Checksum(tampered))
}
