package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinuteOfDay(t *testing.T) {
	m, err := MinuteOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = MinuteOfDay("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = MinuteOfDay("9:30")
	assert.Error(t, err)

	_, err = MinuteOfDay("25:00")
	assert.Error(t, err)
}

func TestFormatMinute(t *testing.T) {
	assert.Equal(t, "09:30", FormatMinute(570))
	assert.Equal(t, "00:00", FormatMinute(0))
	assert.Equal(t, "23:45", FormatMinute(1425))
}

func TestDurationMinutes(t *testing.T) {
	d, err := DurationMinutes("09:00", "10:30")
	require.NoError(t, err)
	assert.Equal(t, 90, d)

	d, err = DurationMinutes("10:00", "09:00")
	require.NoError(t, err)
	assert.Equal(t, -60, d)
}

func TestOverlaps(t *testing.T) {
	// Partial overlap
	assert.True(t, Overlaps("10:00", "11:00", "10:30", "11:30"))
	// Containment
	assert.True(t, Overlaps("09:00", "12:00", "10:00", "11:00"))
	// Identical
	assert.True(t, Overlaps("10:00", "11:00", "10:00", "11:00"))
	// Touching intervals are not an overlap
	assert.False(t, Overlaps("10:00", "11:00", "11:00", "12:00"))
	assert.False(t, Overlaps("11:00", "12:00", "10:00", "11:00"))
	// Disjoint
	assert.False(t, Overlaps("08:00", "09:00", "10:00", "11:00"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", d.Format(DateLayout))

	_, err = ParseDate("01.06.2024")
	assert.Error(t, err)
}

func TestMidnight(t *testing.T) {
	// Calendar day follows the input location, result is always UTC.
	west := time.FixedZone("UTC-7", -7*3600)
	m := Midnight(time.Date(2024, 6, 1, 0, 30, 0, 0, west))
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), m)

	// A parsed date for that same day is not before "today".
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.False(t, d.Before(m))
}
