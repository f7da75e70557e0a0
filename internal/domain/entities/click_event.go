package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ClickKind is the contact channel a visitor clicked
type ClickKind string

const (
	ClickKindPhone   ClickKind = "phone"
	ClickKindWebsite ClickKind = "website"
)

// Valid reports whether k is a known click kind.
func (k ClickKind) Valid() bool {
	return k == ClickKindPhone || k == ClickKindWebsite
}

// ClickEvent records a visitor clicking a provider's phone number or website.
// The JSON names match the records the web front-end writes.
type ClickEvent struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"craftsmanId"`
	Kind       ClickKind `json:"type"`
	Timestamp  Timestamp `json:"timestamp"`
}

// PageView records one load of the public site
type PageView struct {
	ID        string    `json:"id"`
	Timestamp Timestamp `json:"timestamp"`
}

// CategoryClick records a visitor opening a category
type CategoryClick struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp is an instant that decodes from either an ISO-8601 string or
// epoch milliseconds (as a number or a numeric string). Values that cannot be
// parsed decode to the zero time instead of failing the surrounding document.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes the instant as RFC 3339 in UTC, or null when unset.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts RFC 3339 strings, epoch milliseconds and null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			t.Time = time.Time{}
			return nil
		}
		t.Time, _ = ParseTimestamp(s)
		return nil
	}

	t.Time, _ = ParseTimestamp(string(data))
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp normalizes the timestamp forms found in stored events.
// Layouts without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if ms, err := strconv.ParseFloat(value, 64); err == nil {
		// NaN fails both comparisons; ±Inf and out-of-range values would
		// wrap when converted to int64.
		if !(ms >= math.MinInt64 && ms < math.MaxInt64) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)), true
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
