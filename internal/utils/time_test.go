package contextutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatInLocation(t *testing.T) {
	ts := time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)

	require.Equal(t, "07.03. 09:05", FormatInLocation(ts, CardDateLayout, time.UTC))
	require.Equal(t, "07.03.2025, 09:05:03", FormatInLocation(ts, DetailDateLayout, nil))
	require.Equal(t, "", FormatInLocation(time.Time{}, CardDateLayout, time.UTC))
}

func TestFormatCardDate_UsesDisplayTimezone(t *testing.T) {
	ts := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	expected := ts.In(DisplayLocation()).Format(CardDateLayout)
	require.Equal(t, expected, FormatCardDate(ts))
	require.Equal(t, ts.In(DisplayLocation()).Format(DetailDateLayout), FormatDetailDate(ts))
}
