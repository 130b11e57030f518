package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local), date)
}

func TestParseDate_EmptyMeansToday(t *testing.T) {
	date, err := ParseDate("")
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), date)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"24-08-2026", "2026/08/24", "tomorrow"} {
		_, err := ParseDate(input)
		assert.ErrorContains(t, err, "invalid date format", input)
	}
}

func TestParseClock(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)

	ts, err := ParseClock(day, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 24, 9, 30, 0, 0, time.Local), ts)
}

func TestParseClock_Invalid(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)

	for _, input := range []string{"9:30am", "25:00", "noon"} {
		_, err := ParseClock(day, input)
		assert.ErrorContains(t, err, "invalid time format", input)
	}
}
