package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(path, hash string, size, modTime int64) FileRecord {
	return FileRecord{Path: path, Size: size, ModTime: modTime, Hash: hash}
}

func TestDiffIdentical(t *testing.T) {
	m := Manifest{
		"a.txt": rec("a.txt", "h1", 3, 100),
		"b.txt": rec("b.txt", "h2", 5, 200),
	}
	assert.Empty(t, Diff(m, m))
}

func TestDiffClassification(t *testing.T) {
	local := Manifest{
		"only-local.txt": rec("only-local.txt", "h1", 1, 100),
		"same.txt":       rec("same.txt", "same-hash", 4, 100),
		"newer-here.txt": rec("newer-here.txt", "h2", 2, 200),
		"older-here.txt": rec("older-here.txt", "h3", 3, 100),
	}
	remote := Manifest{
		"only-remote.txt": rec("only-remote.txt", "h4", 6, 100),
		"same.txt":        rec("same.txt", "same-hash", 4, 999), // equal hash wins over mtime
		"newer-here.txt":  rec("newer-here.txt", "h5", 2, 100),
		"older-here.txt":  rec("older-here.txt", "h6", 3, 200),
	}

	entries := Diff(local, remote)
	require.Len(t, entries, 4)

	byPath := map[string]DiffEntry{}
	for _, e := range entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, StatusLocalOnly, byPath["only-local.txt"].Status)
	assert.Equal(t, StatusRemoteOnly, byPath["only-remote.txt"].Status)
	assert.Equal(t, StatusLocalNewer, byPath["newer-here.txt"].Status)
	assert.Equal(t, StatusRemoteNewer, byPath["older-here.txt"].Status)
	assert.NotContains(t, byPath, "same.txt")
}

func TestDiffTieFavorsRemote(t *testing.T) {
	local := Manifest{"f.txt": rec("f.txt", "h1", 1, 500)}
	remote := Manifest{"f.txt": rec("f.txt", "h2", 1, 500)}

	entries := Diff(local, remote)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusRemoteNewer, entries[0].Status)
}

func TestDiffMissingHashNeverEqual(t *testing.T) {
	// A record whose file could not be hashed compares equal to nothing,
	// not even another empty hash.
	local := Manifest{"f.txt": rec("f.txt", "", 1, 100)}
	remote := Manifest{"f.txt": rec("f.txt", "", 1, 100)}

	entries := Diff(local, remote)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusRemoteNewer, entries[0].Status)
}

func TestDiffSymmetric(t *testing.T) {
	a := Manifest{
		"x.txt": rec("x.txt", "h1", 1, 100),
		"y.txt": rec("y.txt", "h2", 2, 300),
	}
	b := Manifest{
		"y.txt": rec("y.txt", "h3", 2, 200),
		"z.txt": rec("z.txt", "h4", 3, 100),
	}

	swapped := map[Status]Status{
		StatusLocalOnly:   StatusRemoteOnly,
		StatusRemoteOnly:  StatusLocalOnly,
		StatusLocalNewer:  StatusRemoteNewer,
		StatusRemoteNewer: StatusLocalNewer,
	}

	ab := Diff(a, b)
	ba := Diff(b, a)
	require.Len(t, ba, len(ab))

	baByPath := map[string]DiffEntry{}
	for _, e := range ba {
		baByPath[e.Path] = e
	}
	for _, e := range ab {
		mirror, ok := baByPath[e.Path]
		require.True(t, ok, "path %s missing from reverse diff", e.Path)
		assert.Equal(t, swapped[e.Status], mirror.Status, "path %s", e.Path)
	}
}

func TestDiffSorted(t *testing.T) {
	local := Manifest{
		"c.txt": rec("c.txt", "h1", 1, 100),
		"a.txt": rec("a.txt", "h2", 1, 100),
	}
	remote := Manifest{"b.txt": rec("b.txt", "h3", 1, 100)}

	entries := Diff(local, remote)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.txt", entries[0].Path)
	assert.Equal(t, "b.txt", entries[1].Path)
	assert.Equal(t, "c.txt", entries[2].Path)
}

// TestDiffTwoRoots covers the canonical scenario: root A holds f1.txt
// ("hello"), root B holds a different f1.txt plus a new f2.txt.
func TestDiffTwoRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()

	writeTree(t, rootA, map[string]string{"f1.txt": "hello"})
	writeTree(t, rootB, map[string]string{"f1.txt": "world", "f2.txt": "new"})

	// Make B's f1.txt unambiguously newer.
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(rootB, "f1.txt"), newer, newer))

	a, err := Scan(rootA)
	require.NoError(t, err)
	b, err := Scan(rootB)
	require.NoError(t, err)

	entries := Diff(a, b)
	require.Len(t, entries, 2)
	assert.Equal(t, "f1.txt", entries[0].Path)
	assert.Equal(t, StatusRemoteNewer, entries[0].Status)
	assert.Equal(t, "f2.txt", entries[1].Path)
	assert.Equal(t, StatusRemoteOnly, entries[1].Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "local_only", StatusLocalOnly.String())
	assert.Equal(t, "remote_newer", StatusRemoteNewer.String())
	assert.Equal(t, "unknown", Status(0).String())
}
