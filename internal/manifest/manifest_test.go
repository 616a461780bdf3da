package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BogdanOlar/FreeRTOS-Pebble/internal/eventpump"
)

func noopEntry(p *eventpump.Pump) {}

func TestManifest_AddAndAll(t *testing.T) {
	m := New()
	m.Add(&Record{Name: "System", Type: System, Entry: noopEntry, IsInternal: true})
	m.Add(&Record{Name: "Simple", Type: Face, Entry: noopEntry, IsInternal: true})

	all := m.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "System", all[0].Name)
	assert.Equal(t, "Simple", all[1].Name)
	assert.Equal(t, m.Head(), all[0])
}

func TestManifest_LookupExactMatch(t *testing.T) {
	m := New()
	m.Add(&Record{Name: "Simple", Type: Face})

	rec := m.Lookup("Simple")
	assert.NotNil(t, rec)
	assert.Equal(t, "Simple", rec.Name)
}

func TestManifest_LookupMissReturnsNil(t *testing.T) {
	m := New()
	m.Add(&Record{Name: "Simple", Type: Face})

	assert.Nil(t, m.Lookup("Music"))
}

// TestManifest_LookupPrefixAnomaly locks in the deliberately preserved
// prefix-match behavior: a stored name that is a prefix of the query still
// matches.
func TestManifest_LookupPrefixAnomaly(t *testing.T) {
	m := New()
	m.Add(&Record{Name: "System", Type: System})

	rec := m.Lookup("SystemSettings")
	assert.NotNil(t, rec)
	assert.Equal(t, "System", rec.Name)
}

func TestManifest_LookupFirstMatchWins(t *testing.T) {
	m := New()
	m.Add(&Record{Name: "Sys", Type: System, SlotID: 1})
	m.Add(&Record{Name: "System", Type: System, SlotID: 2})

	rec := m.Lookup("System")
	assert.Equal(t, 1, rec.SlotID)
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "SYSTEM", System.String())
	assert.Equal(t, "FACE", Face.String())
	assert.Equal(t, "WATCHAPP", Watchapp.String())
	assert.Equal(t, "UNKNOWN", Type(99).String())
}
