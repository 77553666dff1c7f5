package render

import (
	"testing"

	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

func record(hr, name, c, ra, dec string, v float64) catalog.Record {
	return catalog.Record{
		HR:  catalog.StringField(hr),
		N:   catalog.StringField(name),
		C:   catalog.StringField(c),
		RA:  catalog.StringField(ra),
		Dec: catalog.StringField(dec),
		V:   catalog.NumberField(v),
	}
}

// testManager loads four stars: two in Orion, one in Lyra, one faint.
func testManager(t *testing.T) *state.Manager {
	t.Helper()
	m := state.NewManager(state.DefaultConfig())
	m.BeginLoad("test")
	stats := m.Load([]catalog.Record{
		record("2061", "Betelgeuse", "Ori", "5h 55m 10.3s", "+7 24 25", 0.5),
		record("1713", "Rigel", "Ori", "5h 14m 32.3s", "-8 12 06", 0.13),
		record("7001", "Vega", "Lyr", "18h 36m 56.3s", "+38 47 01", 0.03),
		record("9000", "", "Lyr", "18h 0m 0s", "+30 0 0", 5.8),
	})
	if stats.Accepted != 4 {
		t.Fatalf("Accepted = %d, want 4", stats.Accepted)
	}
	return m
}
