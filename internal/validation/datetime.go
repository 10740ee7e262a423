package validation

import (
	"encoding/json"
	"strings"
	"time"
)

// trimmed mirrors the trim applied by the sanitizer so length rules see
// the value that would be stored.
func trimmed(s string) string { return strings.TrimSpace(s) }

// DateTime parses a deadline from JSON as either RFC3339 or a bare date
// ("2006-01-02", stored as start of that day UTC). Unparseable input is
// recorded rather than failing the bind, so validation can report it as a
// field error alongside the rest.
type DateTime struct {
	provided bool
	valid    bool
	t        time.Time
}

var dateTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		d.provided = true
		d.valid = false
		return nil
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	d.provided = true
	s := strings.TrimSpace(*raw)
	for _, layout := range dateTimeLayouts {
		parsed, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		d.valid = true
		d.t = parsed
		return nil
	}
	d.valid = false
	return nil
}

// Provided reports whether the key was present and non-empty.
func (d DateTime) Provided() bool { return d.provided }

// Valid reports whether the provided value parsed as a date-time.
func (d DateTime) Valid() bool { return d.valid }

// Time returns the parsed value; zero unless Valid.
func (d DateTime) Time() time.Time { return d.t }

// At builds a provided, valid DateTime. Used by tests and defaults.
func At(t time.Time) DateTime {
	return DateTime{provided: true, valid: true, t: t}
}
