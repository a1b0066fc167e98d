package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPending(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), PendingName)
	src := `abcdefgh required optional

badline
ijklmnop optional sometimes
qrstuvwx unsupported required
`
	require.NoError(t, os.WriteFile(fpath, []byte(src), 0644))

	pending, warnings, err := LoadPending(fpath)
	require.NoError(t, err)

	assert.Equal(t, []Pending{
		{VersionID: "abcdefgh", ServerEnv: "required", ClientEnv: "optional"},
		{VersionID: "qrstuvwx", ServerEnv: "unsupported", ClientEnv: "required"},
	}, pending)

	// One short line, one invalid env.
	assert.Len(t, warnings, 2)
}

func TestLoadPendingMissing(t *testing.T) {
	pending, warnings, err := LoadPending(filepath.Join(t.TempDir(), PendingName))
	assert.NoError(t, err)
	assert.Nil(t, pending)
	assert.Nil(t, warnings)
}
