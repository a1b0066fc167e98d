package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermWidthFallback(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, f.Close())
	}()

	// Size queries on a regular file fail; diagnostics still need a
	// nonzero wrap width.
	assert.Equal(t, uint(80), termWidth(int(f.Fd())))
}
