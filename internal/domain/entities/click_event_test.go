package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_DecodesBothWireForms(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	var events []ClickEvent
	payload := `[
		{"id":"1","craftsmanId":"a","type":"phone","timestamp":"2026-03-01T12:30:00.000Z"},
		{"id":"2","craftsmanId":"a","type":"website","timestamp":` + jsonMillis(want) + `},
		{"id":"3","craftsmanId":"a","type":"phone","timestamp":"` + jsonMillis(want) + `"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &events))
	require.Len(t, events, 3)

	for _, e := range events {
		assert.True(t, e.Timestamp.Equal(want), "event %s: got %v", e.ID, e.Timestamp.Time)
	}
}

func TestTimestamp_MalformedDecodesToZero(t *testing.T) {
	var events []ClickEvent
	payload := `[{"id":"1","craftsmanId":"a","type":"phone","timestamp":"yesterday"},{"id":"2","timestamp":null},{"id":"3","timestamp":{"x":1}}]`

	require.NoError(t, json.Unmarshal([]byte(payload), &events))
	for _, e := range events {
		assert.True(t, e.Timestamp.IsZero())
	}
}

func TestParseTimestamp_RejectsNonFiniteAndOverflowingMillis(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf", "1e300", "-1e30", "9.3e18"} {
		t.Run(raw, func(t *testing.T) {
			parsed, ok := ParseTimestamp(raw)
			assert.False(t, ok)
			assert.True(t, parsed.IsZero())
		})
	}

	parsed, ok := ParseTimestamp("1772368200000")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), parsed.UTC())
}

func TestTimestamp_OverflowingNumberDecodesToZero(t *testing.T) {
	var e ClickEvent
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","timestamp":1e300}`), &e))
	assert.True(t, e.Timestamp.IsZero())
}

func TestTimestamp_MarshalsUTC(t *testing.T) {
	cph, err := time.LoadLocation("Europe/Copenhagen")
	require.NoError(t, err)

	data, err := json.Marshal(At(time.Date(2026, 6, 1, 2, 0, 0, 0, cph)))
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-06-01T00:00:00Z"`, string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func jsonMillis(t time.Time) string {
	data, _ := json.Marshal(t.UnixMilli())
	return string(data)
}
