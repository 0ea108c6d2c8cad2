package trade

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryMostRecentFirst(t *testing.T) {
	h := NewHistory(5)
	h.Record(Entry{SimTime: 1, Message: "first"})
	h.Record(Entry{SimTime: 2, Message: "second"})

	require.Equal(t, 2, h.Len())
	assert.Equal(t, "second", h.Entries[0].Message)
	assert.Equal(t, "first", h.Entries[1].Message)
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(20)
	for i := 1; i <= 25; i++ {
		h.Record(Entry{SimTime: float64(i), Message: fmt.Sprintf("trade %d", i)})
	}

	require.Equal(t, 20, h.Len())
	assert.Equal(t, "trade 25", h.Entries[0].Message)
	assert.Equal(t, "trade 6", h.Entries[19].Message, "entries 1-5 evicted")
}

func TestSetCapacityTrims(t *testing.T) {
	h := NewHistory(10)
	for i := 0; i < 10; i++ {
		h.Record(Entry{SimTime: float64(i)})
	}

	h.SetCapacity(3)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 9.0, h.Entries[0].SimTime, "most recent entries survive the trim")
}
