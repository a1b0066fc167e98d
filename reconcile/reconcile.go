// Package reconcile decides, per manifest entry, whether a newer
// compatible version exists and stages the metadata to apply. It
// never mutates the manifest itself; committing staged changes is the
// downloader's merge step.
package reconcile

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/modrinth"
	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/versiondb"
)

// API is the subset of the Modrinth client the planner needs.
type API interface {
	GetVersion(ctx context.Context, versionID string) (*modrinth.Version, error)
	GetLatestVersion(ctx context.Context, projectID, gameVersion, loader string) (*modrinth.Version, error)
}

// Change is a staged update for one manifest entry, or a staged
// addition when Add is set.
type Change struct {
	// Index of the entry in Manifest.Files; -1 for additions.
	Index int

	Add       bool
	ProjectID string
	Version   *modrinth.Version
	File      modrinth.File

	// Env for additions; updates keep the entry's env.
	Env mrpacker.Env
}

// Plan is the outcome of a reconciliation pass.
type Plan struct {
	Changes  []Change
	Warnings []string
	UpToDate int
}

type Planner struct {
	API API
	DB  *versiondb.DB

	// Files is the pack working tree, used to test whether the
	// recorded file is actually on disk with the recorded hash.
	Files billy.Filesystem
}

// Plan queries the latest compatible version for every manifest entry
// and stages those whose content would change. Entries the host has
// no compatible version for are left untouched with a warning.
func (p *Planner) Plan(ctx context.Context, m *mrpacker.Manifest) (*Plan, error) {
	gameVersion, ok := m.GameVersion()
	if !ok {
		return nil, fmt.Errorf("missing game version: %w", mrpacker.ErrBadManifest)
	}
	loader, _, ok := m.Loader()
	if !ok {
		return nil, fmt.Errorf("missing mod loader: %w", mrpacker.ErrBadManifest)
	}

	plan := &Plan{}
	for i := range m.Files {
		entry := &m.Files[i]
		projectID, ok := entry.ProjectID()
		if !ok {
			plan.warnf("%s: %v", entry.Path, mrpacker.ErrNoProjectID)
			continue
		}
		latest, err := p.API.GetLatestVersion(ctx, projectID, gameVersion, loader)
		if errors.Is(err, mrpacker.ErrNotFound) {
			plan.warnf("%s: no compatible version for %s %s, keeping current", entry.Path, gameVersion, loader)
			continue
		}
		if err != nil {
			plan.warnf("%s: query latest: %v", entry.Path, err)
			continue
		}
		file, ok := latest.PrimaryFile()
		if !ok {
			plan.warnf("%s: version %s has no files", entry.Path, latest.ID)
			continue
		}
		if p.upToDate(entry, projectID, latest, file) {
			plan.UpToDate++
			continue
		}
		plan.Changes = append(plan.Changes, Change{
			Index:     i,
			ProjectID: projectID,
			Version:   latest,
			File:      file,
		})
	}
	return plan, nil
}

// upToDate reports whether the entry already carries the latest file.
// Either the manifest itself records the latest URL with a matching
// on-disk hash, or the version database says the latest version was
// applied and the file is still intact.
func (p *Planner) upToDate(entry *mrpacker.ModFile, projectID string, latest *modrinth.Version, file modrinth.File) bool {
	diskSum, err := p.localSHA1(entry.Path)
	if err != nil {
		return false
	}
	if len(entry.Downloads) > 0 && entry.Downloads[0] == file.URL && diskSum == entry.Hashes.SHA1 {
		return true
	}
	if p.DB == nil {
		return false
	}
	rec, ok, err := p.DB.Get(projectID)
	if err != nil {
		log.Debugf("version db get %q: %+v", projectID, err)
		return false
	}
	return ok && rec.VersionNumber == latest.VersionNumber && diskSum == rec.SHA1
}

// PlanAdditions resolves pending additions by version ID. Failures
// are reported as warnings; valid lines become staged additions.
func (p *Planner) PlanAdditions(ctx context.Context, pending []pack.Pending) ([]Change, []string) {
	var changes []Change
	var warnings []string
	for _, pd := range pending {
		v, err := p.API.GetVersion(ctx, pd.VersionID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("version %s: %v", pd.VersionID, err))
			continue
		}
		file, ok := v.PrimaryFile()
		if !ok {
			warnings = append(warnings, fmt.Sprintf("version %s: no files", pd.VersionID))
			continue
		}
		changes = append(changes, Change{
			Index:     -1,
			Add:       true,
			ProjectID: v.ProjectID,
			Version:   v,
			File:      file,
			Env: mrpacker.Env{
				Server: pd.ServerEnv,
				Client: pd.ClientEnv,
			},
		})
	}
	return changes, warnings
}

func (p *Planner) localSHA1(path string) (string, error) {
	f, err := p.Files.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		cerr := f.Close()
		if cerr != nil {
			log.Debugf("close %q: %+v", path, cerr)
		}
	}()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func (p *Plan) warnf(format string, args ...interface{}) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}
