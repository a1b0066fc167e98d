package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tie/mrpacker/pack/hclspec"
)

func TestOverrideList(t *testing.T) {
	ms := []hclspec.Overrides{
		{Files: []hclspec.File{
			{Path: "config/a.toml", Source: "overrides/a.toml"},
			{Path: "config/b.toml", Source: "overrides/b.toml"},
		}},
		{Files: []hclspec.File{
			{Path: "config/a.toml", Source: "other/a.toml"},
		}},
	}

	files := OverrideList(ms)
	assert.Equal(t, []OverrideFile{
		{Path: "config/a.toml", Source: "other/a.toml"},
		{Path: "config/b.toml", Source: "overrides/b.toml"},
	}, files)
}

func TestOverrideListEmpty(t *testing.T) {
	assert.Nil(t, OverrideList(nil))
	assert.Nil(t, OverrideList([]hclspec.Overrides{{}}))
}
