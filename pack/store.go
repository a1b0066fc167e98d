// Package pack owns the on-disk documents of a modpack project: the
// modpack index, the updater configuration, the pending-addition list
// and the overrides manifest. All mutation of those files goes
// through this package.
package pack

import (
	"encoding/json"
	"fmt"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/mrpacker"
)

// IndexName is the modpack index file name.
const IndexName = "modrinth.index.json"

// LoadManifest reads and validates the modpack index. A missing file
// is reported as os.ErrNotExist so callers can offer guided setup.
func LoadManifest(path string) (*mrpacker.Manifest, error) {
	src, err := robustio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m mrpacker.Manifest
	if err := json.Unmarshal(src, &m); err != nil {
		return nil, fmt.Errorf("%q: %v: %w", path, err, mrpacker.ErrBadManifest)
	}
	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return &m, nil
}

// SaveManifest writes the modpack index atomically.
func SaveManifest(path string, m *mrpacker.Manifest) error {
	data, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0644)
}

// EncodeManifest renders the index with four-space indentation. The
// rendering is deterministic so repeated saves of an unchanged
// manifest are byte-identical.
func EncodeManifest(m *mrpacker.Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Validate checks the index invariants: supported format version,
// known loader, valid env values and unique file paths.
func Validate(m *mrpacker.Manifest) error {
	if m.FormatVersion != mrpacker.FormatVersion {
		return fmt.Errorf("format version %d: %w", m.FormatVersion, mrpacker.ErrBadManifest)
	}
	for dep := range m.Dependencies {
		if dep == mrpacker.GameDependency {
			continue
		}
		if !mrpacker.ValidLoader(dep) {
			return fmt.Errorf("dependency %q: %w", dep, mrpacker.ErrUnknownLoader)
		}
	}
	seen := make(map[string]bool, len(m.Files))
	for _, f := range m.Files {
		if f.Path == "" {
			return fmt.Errorf("file entry with empty path: %w", mrpacker.ErrBadManifest)
		}
		if seen[f.Path] {
			return fmt.Errorf("duplicate path %q: %w", f.Path, mrpacker.ErrBadManifest)
		}
		seen[f.Path] = true
		if f.Env == nil {
			continue
		}
		if !mrpacker.ValidEnv(f.Env.Client) || !mrpacker.ValidEnv(f.Env.Server) {
			return fmt.Errorf("file %q: env %q/%q: %w", f.Path, f.Env.Client, f.Env.Server, mrpacker.ErrBadManifest)
		}
	}
	return nil
}

// NewManifest builds an empty index for guided setup.
func NewManifest(name, versionID, gameVersion, loader, loaderVersion string) *mrpacker.Manifest {
	m := &mrpacker.Manifest{
		Game:          "minecraft",
		FormatVersion: mrpacker.FormatVersion,
		VersionID:     versionID,
		Name:          name,
		Summary:       fmt.Sprintf("%s %s | Minecraft %s", loader, loaderVersion, gameVersion),
		Dependencies: map[string]string{
			mrpacker.GameDependency: gameVersion,
		},
		Files: []mrpacker.ModFile{},
	}
	m.SetLoader(loader, loaderVersion)
	return m
}
