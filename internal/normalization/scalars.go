package normalization

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Text trims a cell and maps the pandas/CSV spellings of "missing" to "".
func Text(cell string) string {
	v := strings.TrimSpace(cell)
	switch strings.ToLower(v) {
	case "nan", "none", "null":
		return ""
	}
	return v
}

// Float parses a numeric cell. Missing cells are 0 with no error; unparsable ones are
// 0 with an error.
func Float(cell string) (float64, error) {
	v := Text(cell)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", snippet(v))
	}
	return f, nil
}

// Int parses an integral cell, accepting float spellings such as "162.0".
func Int(cell string) (int64, error) {
	v := Text(cell)
	if v == "" {
		return 0, nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, nil
	}
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range: %q", snippet(v))
	}
	return int64(math.Round(f)), nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01",
	"2006",
}

const (
	minYear = 1870
	maxYear = 2200
)

// ReleaseDate parses a release date cell. ok is false for missing or unparsable text
// and for years outside a plausible film range.
func ReleaseDate(cell string) (t time.Time, ok bool) {
	v := Text(cell)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		if y := parsed.Year(); y < minYear || y > maxYear {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// Year parses a bare year cell, e.g. "2010" or "2010.0".
func Year(cell string) (int64, bool) {
	y, err := Int(cell)
	if err != nil || y < minYear || y > maxYear {
		return 0, false
	}
	return y, true
}
