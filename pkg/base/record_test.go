package base

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/field"
	"github.com/beanbocchi/deta/pkg/model"
)

func TestRecordExpiry(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	r := NewRecord("a", field.New("n", 1)).ExpireAfter(90 * time.Second)
	payload, err := r.payload()
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_090), payload["__expires"])
	assert.Equal(t, "a", payload["key"])
	assert.Equal(t, 1, payload["n"])

	r = r.ExpireAt(fixed.Add(time.Hour))
	assert.Equal(t, int64(1_700_003_600), r.Expires.Int64)
}

func TestRecordFromMap(t *testing.T) {
	r := RecordFromMap(map[string]any{
		"key":       "a",
		"__expires": float64(42),
		"b":         2,
		"a":         1,
	})

	assert.Equal(t, "a", r.Key)
	assert.True(t, r.Expires.Valid)
	assert.EqualValues(t, 42, r.Expires.Int64)
	require.Len(t, r.Fields, 2)
	assert.Equal(t, "a", r.Fields[0].Name)
	assert.Equal(t, "b", r.Fields[1].Name)
}

func TestRecordPayloadValidation(t *testing.T) {
	tests := []struct {
		name string
		r    Record
	}{
		{"empty key", NewRecord("")},
		{"unnamed field", NewRecord("a", field.New("", 1))},
		{"reserved key field", NewRecord("a", field.New("key", "b"))},
		{"reserved expires field", NewRecord("a", field.New("__expires", 1))},
		{"invalid value", NewRecord("a", field.New("f", make(chan int)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.payload()
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestChunk(t *testing.T) {
	s := make([]int, 60)
	chunks := chunk(s, 25)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 25)
	assert.Len(t, chunks[1], 25)
	assert.Len(t, chunks[2], 10)

	assert.Len(t, chunk(make([]int, 25), 25), 1)
}
