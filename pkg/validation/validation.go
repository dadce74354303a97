package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// Category values such as G-04 or "Quran" are short and printable
	filterValueRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _.-]{0,63}$`)

	// Column names as they appear in CSV headers
	columnNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)
)

const maxColumns = 32

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ValidateFilterValue accepts an empty value (no constraint) or a printable category.
func ValidateFilterValue(field, value string) error {
	if value == "" {
		return nil
	}
	if !filterValueRegex.MatchString(value) {
		return fmt.Errorf("%w: %s filter %q contains unsupported characters", ErrInvalidInput, field, value)
	}
	return nil
}

// ParseColumns splits a comma separated column list and validates each name.
func ParseColumns(raw string) ([]string, error) {
	raw = SanitizeString(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxColumns {
		return nil, fmt.Errorf("%w: at most %d columns may be requested", ErrInvalidInput, maxColumns)
	}

	columns := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !columnNameRegex.MatchString(p) {
			return nil, fmt.Errorf("%w: invalid column name %q", ErrInvalidInput, p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		columns = append(columns, p)
	}
	return columns, nil
}

// ValidateEngagement checks a predictor input. Any finite value is accepted; values
// outside the training range come back flagged as extrapolated.
func ValidateEngagement(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, name)
	}
	return nil
}
