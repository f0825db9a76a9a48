package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"median/models"
)

func TestSaveSeedFile_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTag(models.EndpointTag{Name: "Admin"})
	require.NoError(t, err)

	for _, name := range []string{"seed.yaml", "seed.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveSeedFile(context.Background(), path, s.Snapshot()))

			loaded, err := LoadSeedFile(path)
			require.NoError(t, err)
			assert.Len(t, loaded.Tags, 3)
			assert.Len(t, loaded.Fields, 6)

			restored := New(loaded)
			assert.Equal(t, s.Counts(), restored.Counts())
		})
	}
}

func TestSaveSeedFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.toml")
	assert.Error(t, SaveSeedFile(context.Background(), path, Seed{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveSeedFile_WaitsForLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	held := flock.New(path + ".lock")
	require.NoError(t, held.Lock())
	defer held.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	assert.Error(t, SaveSeedFile(ctx, path, Seed{}))
}
