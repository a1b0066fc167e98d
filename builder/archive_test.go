package builder

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/pack"
)

func testManifest() *mrpacker.Manifest {
	return &mrpacker.Manifest{
		Game:          "minecraft",
		FormatVersion: 1,
		VersionID:     "1.0.0",
		Name:          "testpack",
		Dependencies: map[string]string{
			"minecraft": "1.20.1",
			"fabric":    "0.15.0",
		},
		Files: []mrpacker.ModFile{{
			Path:      "mods/mod.jar",
			Hashes:    mrpacker.Hashes{SHA1: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
			Downloads: []string{"https://cdn.modrinth.com/data/AANobbMI/versions/v1/mod.jar"},
			FileSize:  5,
		}},
	}
}

// readArchive returns archive entries by name.
func readArchive(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	entries := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		entries[f.Name] = string(data)
	}
	return entries
}

func TestBuildArchive(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "mods/mod.jar", []byte("modjar"), 0644))
	require.NoError(t, util.WriteFile(fs, "extras/server.properties", []byte("motd=hi"), 0644))

	var buf bytes.Buffer
	z := zip.NewWriter(&buf)
	b := NewArchiveBuilder(fs, z)

	m := testManifest()
	require.NoError(t, b.AddManifest(m))
	require.NoError(t, b.AddModFiles(m))
	require.NoError(t, b.AddOverrides([]pack.OverrideFile{
		{Path: "config/server.properties", Source: "extras/server.properties"},
	}))
	require.NoError(t, z.Close())

	entries := readArchive(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "modjar", entries["mods/mod.jar"])
	assert.Equal(t, "motd=hi", entries["overrides/config/server.properties"])

	data, err := pack.EncodeManifest(m)
	require.NoError(t, err)
	assert.Equal(t, string(data), entries[pack.IndexName])
}

func TestBuildArchiveMissingMod(t *testing.T) {
	var buf bytes.Buffer
	z := zip.NewWriter(&buf)
	b := NewArchiveBuilder(memfs.New(), z)

	err := b.AddModFiles(testManifest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, mrpacker.ErrMissingFile))
	assert.Contains(t, err.Error(), "mods/mod.jar")
}

func TestBuildArchiveMissingOverride(t *testing.T) {
	var buf bytes.Buffer
	z := zip.NewWriter(&buf)
	b := NewArchiveBuilder(memfs.New(), z)

	err := b.AddOverrides([]pack.OverrideFile{
		{Path: "config/x.toml", Source: "extras/x.toml"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mrpacker.ErrMissingFile))
}

func TestAddReader(t *testing.T) {
	var buf bytes.Buffer
	z := zip.NewWriter(&buf)
	b := NewArchiveBuilder(memfs.New(), z)

	require.NoError(t, b.AddReader(bytes.NewReader([]byte("readme")), "README.md"))
	require.NoError(t, z.Close())

	entries := readArchive(t, &buf)
	assert.Equal(t, "readme", entries["README.md"])
}
