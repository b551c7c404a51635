package swimtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseEventTitle(t *testing.T) {
	tests := []struct {
		title    string
		stroke   string
		distance int
		gender   string
	}{
		{"1.- 200 m férfi pillangó", "FLY", 200, "M"},
		{"5.- 100 m női hát", "BACK", 100, "F"},
		{"50 m mell mix", "BREAST", 50, "X"},
		{"4x100 m férfi gyorsváltó", "FREE", 100, "M"},
		{"4x50 m vegyesváltó mix", "IM", 50, "X"},
		{"400 m women freestyle", "FREE", 400, "F"},
		{"ismeretlen szám", "FREE", 0, "X"},
	}
	for _, tt := range tests {
		stroke, distance, gender := ParseEventTitle(tt.title)
		require.Equal(t, tt.stroke, stroke, tt.title)
		require.Equal(t, tt.distance, distance, tt.title)
		require.Equal(t, tt.gender, gender, tt.title)
	}
}

func TestParseSessionDate(t *testing.T) {
	d, ok := ParseSessionDate("SESSION 1 - 2023.01.28.")
	require.True(t, ok)
	require.Equal(t, time.Date(2023, 1, 28, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseSessionDate("SESSION 1")
	require.False(t, ok)

	_, ok = ParseSessionDate("2023.13.45.")
	require.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2004-06-01")
	require.True(t, ok)
	require.Equal(t, time.Date(2004, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("28.01.2023")
	require.True(t, ok)
	require.Equal(t, time.Date(2023, 1, 28, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("2004-06-01T00:00:00")
	require.True(t, ok)
	require.Equal(t, 2004, d.Year())

	_, ok = ParseDate("")
	require.False(t, ok)
	_, ok = ParseDate("soon")
	require.False(t, ok)
}

func TestParseSplits(t *testing.T) {
	marks := ParseSplits("100m**01:14.41**150m**01:55.64**")
	require.Len(t, marks, 2)
	require.Equal(t, SplitMark{Distance: 100, Hundredths: 7441}, marks[0])
	require.Equal(t, SplitMark{Distance: 150, Hundredths: 11564}, marks[1])

	marks = ParseSplits("50 m 0:29.80")
	require.Len(t, marks, 1)
	require.Equal(t, SplitMark{Distance: 50, Hundredths: 2980}, marks[0])

	require.Empty(t, ParseSplits("no splits here"))
}
