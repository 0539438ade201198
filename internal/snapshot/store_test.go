package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mirrorsync/pkg/errors"
)

type payload struct {
	Keys []string `json:"keys"`
}

func TestSaveAndLatest(t *testing.T) {
	store := New(t.TempDir())

	path, err := store.Save("issues", payload{Keys: []string{"PROJ-1", "PROJ-2"}})
	require.NoError(t, err)
	assert.FileExists(t, path)

	var got payload
	require.NoError(t, store.Latest("issues", &got))
	assert.Equal(t, []string{"PROJ-1", "PROJ-2"}, got.Keys)
}

func TestLatestMissing(t *testing.T) {
	store := New(t.TempDir())
	var got payload
	err := store.Latest("issues", &got)
	assert.True(t, errors.IsNotFound(err))
}

func TestPruneKeepsNewest(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	dir := t.TempDir()
	store := New(dir, WithKeep(3), WithClock(clock))

	for i := 0; i < 5; i++ {
		_, err := store.Save("items", payload{})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "items"))
	require.NoError(t, err)

	var stamped []string
	for _, entry := range entries {
		if entry.Name() == "items-latest.json" {
			continue
		}
		stamped = append(stamped, entry.Name())
	}
	require.Len(t, stamped, 3)

	// The survivors are the three most recent writes.
	assert.Equal(t, "items-20260801-120003.json", stamped[0])
	assert.Equal(t, "items-20260801-120005.json", stamped[2])
}

func TestKindsAreIsolated(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Save("issues", payload{Keys: []string{"PROJ-1"}})
	require.NoError(t, err)
	_, err = store.Save("items", payload{Keys: []string{"item-1"}})
	require.NoError(t, err)

	var issues, items payload
	require.NoError(t, store.Latest("issues", &issues))
	require.NoError(t, store.Latest("items", &items))
	assert.NotEqual(t, issues.Keys, items.Keys)
}
