package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("KEVWATCH_TEST_VAR", "set")
	assert.Equal(t, "set", GetEnvDefault("KEVWATCH_TEST_VAR", "fallback"))
	assert.Equal(t, "fallback", GetEnvDefault("KEVWATCH_TEST_VAR_MISSING", "fallback"))
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-01-02T00:00:00Z", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2025-05-06T14:00:23.4392Z", time.Date(2025, 5, 6, 14, 0, 23, 439200000, time.UTC)},
		{"no zone", "2024-01-02T10:30:00", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)},
		{"date only", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"surrounding whitespace", " 2024-01-02T00:00:00Z ", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReleaseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}

	_, err := ParseReleaseDate("not a date")
	assert.Error(t, err)

	_, err = ParseReleaseDate("")
	assert.Error(t, err)
}

func TestYearRange(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSince string
		wantUntil string
	}{
		{"empty", "", "", ""},
		{"exact year", "2024", "2024-01-01", "2024-12-31"},
		{"until year", "2023-", "", "2023-12-31"},
		{"since year", "2022+", "2022-01-01", ""},
		{"span", "2021-2022", "2021-01-01", "2022-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			since, until, err := YearRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSince, since)
			assert.Equal(t, tt.wantUntil, until)
		})
	}

	for _, bad := range []string{"24", "twenty24", "2021-2022-2023", "2021+2022"} {
		_, _, err := YearRange(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestNormalizeCVEPattern(t *testing.T) {
	assert.Equal(t, "CVE-2024-30088", NormalizeCVEPattern(" cve-2024-30088 "))
	assert.Equal(t, "2024", NormalizeCVEPattern("2024"))
}
