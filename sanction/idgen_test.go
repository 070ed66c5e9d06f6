package sanction

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eighteenDigits = regexp.MustCompile(`^[1-9][0-9]{17}$`)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerateProducesEighteenDigits(t *testing.T) {
	g := NewIDGenerator(newMemStore(), 0)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := g.Generate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, eighteenDigits, id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestGenerateRedrawsOnCollision(t *testing.T) {
	store := newMemStore()
	store.put(activeRecord("100000000000000000", "user-1", "mute", time.Now(), time.Minute))

	g := NewIDGenerator(store, 3)
	g.random = io.MultiReader(bytes.NewReader(make([]byte, 8)), bytes.NewReader(bytes.Repeat([]byte{1}, 64)))

	id, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "100000000000000000", id)
	assert.Regexp(t, eighteenDigits, id)
}

func TestGenerateExhausted(t *testing.T) {
	store := newMemStore()
	store.put(activeRecord("100000000000000000", "user-1", "mute", time.Now(), time.Minute))

	g := NewIDGenerator(store, 4)
	g.random = zeroReader{}

	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestGenerateStoreErrors(t *testing.T) {
	store := newMemStore()
	store.findErr = errStoreDown

	_, err := NewIDGenerator(store, 2).Generate(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errStoreDown)
}
