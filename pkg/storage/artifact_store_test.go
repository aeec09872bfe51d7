package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStoreSaveAndOpen(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Save("entries-j1.csv", []byte("a,b,c")))

	file, err := store.Open("entries-j1.csv")
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(body))
}

func TestArtifactStoreFlattensNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Save("../../escape.csv", []byte("x")))

	_, err = os.Stat(filepath.Join(dir, "escape.csv"))
	assert.NoError(t, err, "artifact lands inside the store directory")
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.csv"))
	assert.True(t, os.IsNotExist(err), "nothing written outside the store directory")

	file, err := store.Open("../../escape.csv")
	require.NoError(t, err)
	require.NoError(t, file.Close())
}

func TestArtifactStoreSweepRemovesOnlyExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Save("old.csv", []byte("old")))
	require.NoError(t, store.Save("fresh.csv", []byte("fresh")))
	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), stale, stale))

	removed, err := store.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, "old.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "fresh.csv"))
	assert.NoError(t, err)
}

func TestArtifactStoreRemoveMissingIsFine(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	assert.NoError(t, store.Remove("never-there.csv"))
}
