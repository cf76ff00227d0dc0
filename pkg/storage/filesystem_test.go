package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("dayboard_org-1.csv", []byte("Start,End\n"))
	require.NoError(t, err)
	require.Equal(t, "dayboard_org-1.csv", name)

	file, err := store.Open(name)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "Start,End\n", string(data))
}

func TestLocalStorageConfinesPathsToBaseDir(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "outside.csv")
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Save("../outside.csv", []byte("x"))
	require.NoError(t, err)

	_, statErr := os.Stat(outside)
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(base, "outside.csv"))
	require.NoError(t, statErr)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("stale.csv", []byte("old"))
	require.NoError(t, err)
	stalePath := store.Path("stale.csv")
	require.NoError(t, os.Chtimes(stalePath, time.Now().Add(-48*time.Hour), time.Now().Add(-48*time.Hour)))

	_, err = store.Save("fresh.csv", []byte("new"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"stale.csv"}, deleted)

	_, statErr := os.Stat(stalePath)
	require.True(t, os.IsNotExist(statErr))
}
