package mrpacker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModFileProjectID(t *testing.T) {
	tests := []struct {
		name      string
		downloads []string
		want      string
		ok        bool
	}{
		{
			name:      "cdn url",
			downloads: []string{"https://cdn.modrinth.com/data/AANobbMI/versions/abcd1234/sodium.jar"},
			want:      "AANobbMI",
			ok:        true,
		},
		{
			name:      "no downloads",
			downloads: nil,
			ok:        false,
		},
		{
			name:      "short url",
			downloads: []string{"https://cdn.modrinth.com/"},
			ok:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ModFile{Downloads: tt.downloads}
			got, ok := f.ProjectID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModFileServerOnly(t *testing.T) {
	tests := []struct {
		name string
		env  *Env
		want bool
	}{
		{"nil env", nil, false},
		{"server only", &Env{Server: EnvRequired, Client: EnvUnsupported}, true},
		{"both required", &Env{Server: EnvRequired, Client: EnvRequired}, false},
		{"client only", &Env{Server: EnvUnsupported, Client: EnvRequired}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ModFile{Env: tt.env}
			assert.Equal(t, tt.want, f.ServerOnly())
		})
	}
}

func TestManifestLoader(t *testing.T) {
	m := Manifest{Dependencies: map[string]string{
		GameDependency: "1.20.1",
		"forge":        "47.2.0",
	}}

	name, version, ok := m.Loader()
	assert.True(t, ok)
	assert.Equal(t, "forge", name)
	assert.Equal(t, "47.2.0", version)

	m.SetLoader("fabric", "0.15.0")
	name, version, ok = m.Loader()
	assert.True(t, ok)
	assert.Equal(t, "fabric", name)
	assert.Equal(t, "0.15.0", version)
	_, exists := m.Dependencies["forge"]
	assert.False(t, exists, "previous loader key should be removed")

	game, ok := m.GameVersion()
	assert.True(t, ok)
	assert.Equal(t, "1.20.1", game)
}

func TestValidLoader(t *testing.T) {
	for _, l := range Loaders {
		assert.True(t, ValidLoader(l), l)
	}
	assert.False(t, ValidLoader("rift"))
}

func TestValidEnv(t *testing.T) {
	assert.True(t, ValidEnv(EnvRequired))
	assert.True(t, ValidEnv(EnvOptional))
	assert.True(t, ValidEnv(EnvUnsupported))
	assert.False(t, ValidEnv("maybe"))
	assert.False(t, ValidEnv(""))
}
