package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	backend := NewFileBackend(path)
	ctx := context.Background()

	_, err := backend.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, backend.Save(ctx, []byte(`{"version":1}`)))
	require.NoError(t, backend.Save(ctx, []byte(`{"version":2}`)))

	data, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileBackendEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	_, err := NewFileBackend(path).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMemoryBackend(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	_, err := backend.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	payload := []byte(`{"version":1}`)
	require.NoError(t, backend.Save(ctx, payload))
	payload[0] = 'x'

	data, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
	assert.Equal(t, 1, backend.Saves())
}
