package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMirrorRoundTrip(t *testing.T) {
	mirror, err := OpenMirror(filepath.Join(t.TempDir(), "mirror.db"), 0)
	require.NoError(t, err)
	defer mirror.Close()

	active, err := mirror.Active()
	require.NoError(t, err)
	require.False(t, active)

	require.NoError(t, mirror.MarkActive())
	active, err = mirror.Active()
	require.NoError(t, err)
	require.True(t, active)

	require.NoError(t, mirror.Clear())
	active, err = mirror.Active()
	require.NoError(t, err)
	require.False(t, active)
}

func TestMirrorSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	mirror, err := OpenMirror(path, 0)
	require.NoError(t, err)
	require.NoError(t, mirror.MarkActive())
	require.NoError(t, mirror.Close())

	mirror, err = OpenMirror(path, 0)
	require.NoError(t, err)
	defer mirror.Close()
	active, err := mirror.Active()
	require.NoError(t, err)
	require.True(t, active)
}

func TestMirrorExpiresStaleRecords(t *testing.T) {
	mirror, err := OpenMirror(
		filepath.Join(t.TempDir(), "mirror.db"),
		50*time.Millisecond,
	)
	require.NoError(t, err)
	defer mirror.Close()

	require.NoError(t, mirror.MarkActive())
	active, err := mirror.Active()
	require.NoError(t, err)
	require.True(t, active)

	time.Sleep(100 * time.Millisecond)
	active, err = mirror.Active()
	require.NoError(t, err)
	require.False(t, active)
}

func TestMirrorToleratesMangledRecords(t *testing.T) {
	mirror, err := OpenMirror(filepath.Join(t.TempDir(), "mirror.db"), 0)
	require.NoError(t, err)
	defer mirror.Close()

	require.NoError(t, mirror.MarkActive())
	_, err = mirror.db.Exec(
		`UPDATE session_mirror SET value = 'garbage' WHERE key = ?`,
		mirrorKeyUpdated,
	)
	require.NoError(t, err)

	// A record that cannot be parsed is treated as absent, never as an error
	active, err := mirror.Active()
	require.NoError(t, err)
	require.False(t, active)
}
