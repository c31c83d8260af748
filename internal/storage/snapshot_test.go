package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DavidAlphaFox/texsearch/internal/index"
	"github.com/DavidAlphaFox/texsearch/internal/latex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *index.Tree {
	tree := index.NewTree()
	tree.Add(index.NewEntry("doc1", "doc1#eq0", latex.Forest{latex.NewText("x")}))
	tree.Add(index.NewEntry("doc1", "doc1#eq1", latex.Forest{
		latex.NewCommand("dot", latex.Forest{latex.NewText("V")}),
	}))
	tree.Add(index.NewEntry("doc2", "doc2#eq0", latex.Forest{latex.NewText("y"), latex.NewText("z")}))
	tree.DeleteDoc("doc2")
	return tree
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_store")
	snap := &Snapshot{LastUpdate: 42, Tree: testTree()}

	require.NoError(t, snap.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), loaded.LastUpdate)
	assert.Equal(t, snap.Tree.Len(), loaded.Tree.Len())
	assert.Equal(t, len(snap.Tree.Nodes), len(loaded.Tree.Nodes))
	for i := range snap.Tree.Nodes {
		want, got := snap.Tree.Nodes[i], loaded.Tree.Nodes[i]
		assert.Equal(t, want.Pivot.FragmentID, got.Pivot.FragmentID)
		assert.Equal(t, want.Tombstone, got.Tombstone)
		assert.True(t, latex.Equal(want.Pivot.Tokens, got.Pivot.Tokens))
		assert.Equal(t, len(want.Bucket), len(got.Bucket))
		assert.Equal(t, want.Children, got.Children)
	}

	// Suffixes are derived state and come back on demand.
	assert.NotEmpty(t, loaded.Tree.Nodes[0].Pivot.Suffixes())
}

func TestSaveLeavesNoStagingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_store")
	require.NoError(t, Empty().Save(path))

	_, err := os.Stat(TempPath(path))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_store")
	require.NoError(t, Empty().Save(path))

	snap := &Snapshot{LastUpdate: 7, Tree: testTree()}
	require.NoError(t, snap.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.LastUpdate)
	assert.False(t, loaded.Tree.Empty())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index_store")
	require.NoError(t, os.WriteFile(path, []byte("not a snapshot"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEmptySnapshot(t *testing.T) {
	snap := Empty()
	assert.Zero(t, snap.LastUpdate)
	assert.True(t, snap.Tree.Empty())

	path := filepath.Join(t.TempDir(), "index_store")
	require.NoError(t, snap.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Tree.Empty())
}