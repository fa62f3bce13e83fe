package closures

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		"year": 2024,
		"months": [
			{"month": 5, "days": "25", "reason": "Diwali"},
			{"month": 1, "days": "1, 26+, 27*", "reason": ""}
		]
	}`)

	got, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, Closure{Date: time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC), Reason: "Diwali"}, got[0])
	assert.Equal(t, time.Date(2024, 1, 26, 0, 0, 0, 0, time.UTC), got[2].Date)
	assert.Equal(t, DefaultReason, got[3].Reason)

	first, last := Span(got)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 5, 25, 0, 0, 0, 0, time.UTC), last)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{"year":`},
		{"no year", `{"months": []}`},
		{"bad month", `{"year": 2024, "months": [{"month": 13, "days": "1"}]}`},
		{"bad day", `{"year": 2024, "months": [{"month": 2, "days": "x"}]}`},
		{"impossible day", `{"year": 2023, "months": [{"month": 2, "days": "29"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closures.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"year": 2024, "months": [{"month": 8, "days": "15", "reason": "Independence Day"}]}`), 0o600))

	got, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Independence Day", got[0].Reason)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSpanEmpty(t *testing.T) {
	first, last := Span(nil)
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())
}
