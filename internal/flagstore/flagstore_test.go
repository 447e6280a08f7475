package flagstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "flags.yaml"))
	require.NoError(t, err)
	require.False(t, s.IsFlagged("anyone"))
	require.Empty(t, s.List())
}

func TestSetFlagPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")

	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetFlag("octocat", true))
	require.NoError(t, s.SetFlag("hubot", true))
	require.True(t, s.IsFlagged("octocat"))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.True(t, reopened.IsFlagged("octocat"))
	require.True(t, reopened.IsFlagged("hubot"))
	require.False(t, reopened.IsFlagged("ghost"))
}

func TestSetFlagFalseRemoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetFlag("octocat", true))
	require.NoError(t, s.SetFlag("octocat", false))
	require.False(t, s.IsFlagged("octocat"))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.False(t, reopened.IsFlagged("octocat"))
}

func TestListSorted(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "flags.yaml"))
	require.NoError(t, err)

	require.NoError(t, s.SetFlag("zed", true))
	require.NoError(t, s.SetFlag("alice", true))
	require.NoError(t, s.SetFlag("mona", true))

	require.Equal(t, []string{"alice", "mona", "zed"}, s.List())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o600))

	_, err := Open(path)
	require.Error(t, err)
}

func TestFileShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetFlag("octocat", true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "version: 1")
	require.Contains(t, string(data), "- octocat")
}
