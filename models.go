package mrpacker

import (
	"strings"
)

// Env values for a mod file on a given side.
const (
	EnvRequired    = "required"
	EnvOptional    = "optional"
	EnvUnsupported = "unsupported"
)

// Loaders is the set of mod loaders allowed in the manifest
// dependencies block, in menu display order.
var Loaders = []string{
	"fabric",
	"forge",
	"neoforge",
	"quilt",
	"liteloader",
}

// GameDependency is the dependencies key for the Minecraft version.
const GameDependency = "minecraft"

// FormatVersion is the modpack index format this tool understands.
const FormatVersion = 1

func ValidLoader(name string) bool {
	for _, l := range Loaders {
		if l == name {
			return true
		}
	}
	return false
}

func ValidEnv(env string) bool {
	switch env {
	case EnvRequired, EnvOptional, EnvUnsupported:
		return true
	}
	return false
}

type Env struct {
	// Client is the requirement on the client side.
	Client string `json:"client"`

	// Server is the requirement on the server side.
	Server string `json:"server"`
}

type Hashes struct {
	SHA1   string `json:"sha1"`
	SHA512 string `json:"sha512"`
}

// ModFile is a single file entry in the modpack index.
type ModFile struct {
	// Path is the file location relative to the pack root,
	// always with forward slashes.
	Path string `json:"path"`

	Hashes Hashes `json:"hashes"`

	// Env is nil when the file has no side requirements.
	Env *Env `json:"env,omitempty"`

	// Downloads lists mirror URLs for the file. The first URL
	// identifies the hosting project.
	Downloads []string `json:"downloads"`

	FileSize int64 `json:"fileSize"`
}

// ProjectID extracts the hosting project ID from the first download
// URL. Modrinth CDN URLs have the form
// https://cdn.modrinth.com/data/<project>/versions/<version>/<file>.
func (f *ModFile) ProjectID() (string, bool) {
	if len(f.Downloads) == 0 {
		return "", false
	}
	parts := strings.Split(f.Downloads[0], "/")
	if len(parts) < 5 || parts[4] == "" {
		return "", false
	}
	return parts[4], true
}

// ServerOnly reports whether the file belongs in the server mods
// directory rather than the shared mods directory.
func (f *ModFile) ServerOnly() bool {
	if f.Env == nil {
		return false
	}
	return f.Env.Server == EnvRequired && f.Env.Client == EnvUnsupported
}

// Manifest is the persisted modpack index (modrinth.index.json).
type Manifest struct {
	Game          string            `json:"game"`
	FormatVersion int               `json:"formatVersion"`
	VersionID     string            `json:"versionId"`
	Name          string            `json:"name"`
	Summary       string            `json:"summary,omitempty"`
	Dependencies  map[string]string `json:"dependencies"`
	Files         []ModFile         `json:"files"`
}

// GameVersion returns the Minecraft version from dependencies.
func (m *Manifest) GameVersion() (string, bool) {
	v, ok := m.Dependencies[GameDependency]
	return v, ok && v != ""
}

// Loader returns the manifest mod loader and its version. At most one
// loader key is expected; the first match in Loaders order wins.
func (m *Manifest) Loader() (name, version string, ok bool) {
	for _, l := range Loaders {
		if v, exists := m.Dependencies[l]; exists {
			return l, v, true
		}
	}
	return "", "", false
}

// SetLoader replaces any previously set loader key.
func (m *Manifest) SetLoader(name, version string) {
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	for _, l := range Loaders {
		delete(m.Dependencies, l)
	}
	m.Dependencies[name] = version
}
