// Package util provides shared helpers for env handling, date parsing and
// the CLI filter grammar.
package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex {                     // not found return default
		return defVal
	}
	return val // return value for env var
}

// IsEmpty checks if a string is empty or contains only whitespace
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// ParseReleaseDate parses a catalog release timestamp. Upstream serves
// RFC3339 with fractional seconds but the format has drifted over releases,
// so a few fallbacks are tried. Timestamps without a zone are taken as UTC.
func ParseReleaseDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.0000",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	dateStr = strings.TrimSpace(dateStr)
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

var (
	yearExact = regexp.MustCompile(`^\d{4}$`)
	yearUntil = regexp.MustCompile(`^(\d{4})-$`)
	yearSince = regexp.MustCompile(`^(\d{4})\+$`)
	yearSpan  = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

// YearRange converts a year filter argument into inclusive dateAdded bounds.
// Supported forms: "2024" (that year), "2023-" (up to and including 2023),
// "2022+" (2022 onwards), "2021-2022" (span). An empty argument yields empty
// bounds, meaning unfiltered.
func YearRange(yearArg string) (since string, until string, err error) {
	yearArg = strings.TrimSpace(yearArg)
	if yearArg == "" {
		return "", "", nil
	}

	switch {
	case yearExact.MatchString(yearArg):
		return yearArg + "-01-01", yearArg + "-12-31", nil
	case yearUntil.MatchString(yearArg):
		year := yearUntil.FindStringSubmatch(yearArg)[1]
		return "", year + "-12-31", nil
	case yearSince.MatchString(yearArg):
		year := yearSince.FindStringSubmatch(yearArg)[1]
		return year + "-01-01", "", nil
	case yearSpan.MatchString(yearArg):
		m := yearSpan.FindStringSubmatch(yearArg)
		return m[1] + "-01-01", m[2] + "-12-31", nil
	}

	return "", "", fmt.Errorf("invalid year filter: %s (use 2024, 2023-, 2022+ or 2021-2022)", yearArg)
}

// NormalizeCVEPattern prepares a CVE filter argument for case-insensitive
// substring matching, so "cve-2024" and "2024-30088" both work.
func NormalizeCVEPattern(pattern string) string {
	return strings.ToUpper(strings.TrimSpace(pattern))
}
