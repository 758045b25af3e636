package store

import (
	"os"
	"path/filepath"
	"staffping/internal/structures"
	"staffping/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackup(t *testing.T) *Backup {
	t.Helper()
	conf := &structures.Config{}
	conf.Persistence.Dir = t.TempDir()

	b, err := NewBackup(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestBackupRoundTrip(t *testing.T) {
	b := newTestBackup(t)

	raw := []byte(`{"conductor":1700000000000}`)
	require.NoError(t, b.Write("lastSeen", raw))

	got, err := b.Read("lastSeen")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestBackupOverwrite(t *testing.T) {
	b := newTestBackup(t)

	require.NoError(t, b.Write("doc", []byte(`{"v":1}`)))
	require.NoError(t, b.Write("doc", []byte(`{"v":2}`)))

	got, err := b.Read("doc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got)
}

func TestBackupLeavesNoTempFiles(t *testing.T) {
	conf := &structures.Config{}
	conf.Persistence.Dir = t.TempDir()
	b, err := NewBackup(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Write("doc", []byte(`{}`)))

	entries, err := os.ReadDir(conf.Persistence.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "doc.json.zst", entries[0].Name())
}

func TestBackupReadMissing(t *testing.T) {
	b := newTestBackup(t)

	_, err := b.Read("never-written")
	require.Error(t, err)
}

func TestNewBackupCreatesDir(t *testing.T) {
	conf := &structures.Config{}
	conf.Persistence.Dir = filepath.Join(t.TempDir(), "nested", "backups")

	b, err := NewBackup(conf, &testutil.MockLogger{})
	require.NoError(t, err)
	defer b.Close()

	info, err := os.Stat(conf.Persistence.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
