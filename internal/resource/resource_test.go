package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefs() []Definition {
	return []Definition{
		{ID: "grain", Name: "Grain", BaseValue: 2},
		{ID: "iron_ore", Name: "Iron Ore", BaseValue: 4},
	}
}

func TestPriceFallsBackToBaseValue(t *testing.T) {
	r := NewRegistry(1, 0, testDefs())

	assert.Equal(t, 2.0, r.Price("grain"))
	assert.Equal(t, 4.0, r.Price("iron_ore"))
	assert.Zero(t, r.Price("nonesuch"))
}

func TestSetPriceOverridesAndClears(t *testing.T) {
	r := NewRegistry(1, 0, testDefs())

	r.SetPrice("grain", 3.5)
	assert.Equal(t, 3.5, r.Price("grain"))

	// Non-positive clears the live price, restoring the fallback.
	r.SetPrice("grain", 0)
	assert.Equal(t, 2.0, r.Price("grain"))
}

func TestDriftStaysInsideBand(t *testing.T) {
	const band = 0.25
	r := NewRegistry(42, band, testDefs())

	for simTime := 0.0; simTime < 100000; simTime += 777 {
		r.Drift(simTime)
		for _, d := range testDefs() {
			p := r.Price(d.ID)
			assert.GreaterOrEqual(t, p, d.BaseValue*(1-band))
			assert.LessOrEqual(t, p, d.BaseValue*(1+band))
		}
	}
}

func TestDriftDeterministicPerSeed(t *testing.T) {
	a := NewRegistry(7, 0.3, testDefs())
	b := NewRegistry(7, 0.3, testDefs())

	a.Drift(1234)
	b.Drift(1234)
	assert.Equal(t, a.Price("grain"), b.Price("grain"))
	assert.Equal(t, a.Price("iron_ore"), b.Price("iron_ore"))
}

func TestZeroBandDisablesDrift(t *testing.T) {
	r := NewRegistry(7, 0, testDefs())
	r.Drift(5000)
	assert.Equal(t, 2.0, r.Price("grain"))
}

func TestLookupAndDuplicateIDs(t *testing.T) {
	defs := append(testDefs(), Definition{ID: "grain", Name: "Grain again", BaseValue: 99})
	r := NewRegistry(1, 0, defs)

	require.Len(t, r.Definitions(), 2, "duplicate definition ids are dropped")
	d, ok := r.Lookup("grain")
	require.True(t, ok)
	assert.Equal(t, 2.0, d.BaseValue)
}
