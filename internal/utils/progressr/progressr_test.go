package progressr

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("0123456789")), 10)

	buf := make([]byte, 4)
	_, err := io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, r.Progress(), 1e-9)

	_, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.EqualValues(t, 10, r.BytesRead())
	assert.InDelta(t, 1.0, r.Progress(), 1e-9)
	assert.NoError(t, r.Close())
}

func TestProgressUnknownTotal(t *testing.T) {
	r := NewReader(io.NopCloser(strings.NewReader("abc")), -1)
	_, _ = io.ReadAll(r)

	assert.Zero(t, r.Progress())
	assert.EqualValues(t, 3, r.BytesRead())
	assert.EqualValues(t, -1, r.Total())
}
