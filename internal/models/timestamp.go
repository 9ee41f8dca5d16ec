package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// layouts lists the textual forms accepted from clients and from SQLite.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a point in time that travels as epoch milliseconds in JSON.
// It also accepts RFC 3339 and SQL datetime strings on input.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes the timestamp as epoch milliseconds, or null when zero.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

// UnmarshalJSON accepts epoch milliseconds (number or numeric string),
// a date-time string, an empty string or null.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		return t.parse(s)
	}
	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}
	return nil
}

func (t *Timestamp) parse(s string) error {
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = Timestamp{Time: time.UnixMilli(ms).UTC()}
		return nil
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: parsed.UTC()}
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC(), nil
}

// Scan implements sql.Scanner. Integer columns hold epoch milliseconds,
// the same unit as the JSON form.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case time.Time:
		*t = Timestamp{Time: v.UTC()}
		return nil
	case int64:
		*t = Timestamp{Time: time.UnixMilli(v).UTC()}
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("timestamp: cannot scan %T", src)
	}
}
