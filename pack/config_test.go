package pack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mrpacker"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), ConfigName)

	cfg, err := LoadConfig(fpath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The defaults should now be on disk.
	_, err = os.Stat(fpath)
	assert.NoError(t, err)

	again, err := LoadConfig(fpath)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigMalformed(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), ConfigName)
	require.NoError(t, os.WriteFile(fpath, []byte("nope"), 0644))

	_, err := LoadConfig(fpath)
	assert.True(t, errors.Is(err, mrpacker.ErrBadConfig))
}

func TestLoadConfigBadLevel(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), ConfigName)
	src := `{"logging_level": "verbose", "mods_directory": "mods", "server_directory": "server"}`
	require.NoError(t, os.WriteFile(fpath, []byte(src), 0644))

	_, err := LoadConfig(fpath)
	assert.True(t, errors.Is(err, mrpacker.ErrBadConfig))
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModsDir = ""
	err := SaveConfig(filepath.Join(t.TempDir(), ConfigName), cfg)
	assert.True(t, errors.Is(err, mrpacker.ErrBadConfig))
}
