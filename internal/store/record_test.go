package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{13}-[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// The random suffix should make collisions within one run unlikely.
	assert.Greater(t, len(seen), 90)
}

func TestMergePreservesID(t *testing.T) {
	existing := Record{"id": "r1", "a": 1, "b": 2}
	partial := Record{"b": 3, "id": "sneaky"}

	merged := merge(existing, partial, "r1")

	assert.Equal(t, "r1", merged.ID())
	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 3, merged["b"])

	// Inputs stay untouched.
	assert.Equal(t, 2, existing["b"])
	assert.Equal(t, "sneaky", partial["id"])
}

func TestRecordRoundTrip(t *testing.T) {
	type widget struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	rec, err := ToRecord(widget{ID: "w1", Name: "gear", Count: 7})
	require.NoError(t, err)
	assert.Equal(t, "w1", rec.ID())

	var out widget
	require.NoError(t, FromRecord(rec, &out))
	assert.Equal(t, widget{ID: "w1", Name: "gear", Count: 7}, out)
}
