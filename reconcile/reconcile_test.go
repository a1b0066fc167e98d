package reconcile

import (
	"context"
	"crypto/sha1"
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/modrinth"
	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/versiondb"
)

type fakeAPI struct {
	versions map[string]*modrinth.Version // keyed by version ID
	latest   map[string]*modrinth.Version // keyed by project ID
}

func (f *fakeAPI) GetVersion(ctx context.Context, versionID string) (*modrinth.Version, error) {
	v, ok := f.versions[versionID]
	if !ok {
		return nil, fmt.Errorf("version %s: %w", versionID, mrpacker.ErrNotFound)
	}
	return v, nil
}

func (f *fakeAPI) GetLatestVersion(ctx context.Context, projectID, gameVersion, loader string) (*modrinth.Version, error) {
	v, ok := f.latest[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, mrpacker.ErrNotFound)
	}
	return v, nil
}

func sumOf(data string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(data)))
}

func writeLocal(t *testing.T, fs billy.Filesystem, path, data string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(data), 0644))
}

func testVersion(projectID, id, number, url string) *modrinth.Version {
	return &modrinth.Version{
		ID:            id,
		ProjectID:     projectID,
		VersionNumber: number,
		DatePublished: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Loaders:       []string{"fabric"},
		GameVersions:  []string{"1.20.1"},
		Files: []modrinth.File{{
			URL:      url,
			Filename: "mod.jar",
			Primary:  true,
			Size:     3,
			Hashes:   modrinth.Hashes{SHA1: sumOf("jar")},
		}},
	}
}

func testManifest(url, diskSum string) *mrpacker.Manifest {
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
			Hashes:    mrpacker.Hashes{SHA1: diskSum},
			Downloads: []string{url},
			FileSize:  3,
		}},
	}
}

const projectURL = "https://cdn.modrinth.com/data/AANobbMI/versions/v1/mod.jar"

func TestPlanUpToDate(t *testing.T) {
	fs := memfs.New()
	writeLocal(t, fs, "mods/mod.jar", "jar")

	api := &fakeAPI{latest: map[string]*modrinth.Version{
		"AANobbMI": testVersion("AANobbMI", "v1", "1.0", projectURL),
	}}
	p := &Planner{API: api, Files: fs}

	m := testManifest(projectURL, sumOf("jar"))
	plan, err := p.Plan(context.Background(), m)
	require.NoError(t, err)

	assert.Empty(t, plan.Changes)
	assert.Equal(t, 1, plan.UpToDate)
	assert.Empty(t, plan.Warnings)
}

func TestPlanStagesNewVersion(t *testing.T) {
	fs := memfs.New()
	writeLocal(t, fs, "mods/mod.jar", "jar")

	newURL := "https://cdn.modrinth.com/data/AANobbMI/versions/v2/mod.jar"
	api := &fakeAPI{latest: map[string]*modrinth.Version{
		"AANobbMI": testVersion("AANobbMI", "v2", "2.0", newURL),
	}}
	p := &Planner{API: api, Files: fs}

	m := testManifest(projectURL, sumOf("jar"))
	plan, err := p.Plan(context.Background(), m)
	require.NoError(t, err)

	require.Len(t, plan.Changes, 1)
	c := plan.Changes[0]
	assert.Equal(t, 0, c.Index)
	assert.False(t, c.Add)
	assert.Equal(t, "AANobbMI", c.ProjectID)
	assert.Equal(t, "v2", c.Version.ID)
	assert.Equal(t, newURL, c.File.URL)

	// The manifest itself stays untouched until commit.
	assert.Equal(t, projectURL, m.Files[0].Downloads[0])
}

func TestPlanMissingLocalFile(t *testing.T) {
	api := &fakeAPI{latest: map[string]*modrinth.Version{
		"AANobbMI": testVersion("AANobbMI", "v1", "1.0", projectURL),
	}}
	p := &Planner{API: api, Files: memfs.New()}

	// Same URL and hash recorded, but nothing on disk: stage it.
	m := testManifest(projectURL, sumOf("jar"))
	plan, err := p.Plan(context.Background(), m)
	require.NoError(t, err)
	assert.Len(t, plan.Changes, 1)
}

func TestPlanNoCompatibleVersion(t *testing.T) {
	p := &Planner{API: &fakeAPI{}, Files: memfs.New()}

	m := testManifest(projectURL, sumOf("jar"))
	plan, err := p.Plan(context.Background(), m)
	require.NoError(t, err)

	// The entry is never deleted, only warned about.
	assert.Empty(t, plan.Changes)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "no compatible version")
	assert.Len(t, m.Files, 1)
}

func TestPlanVersionDBShortCircuit(t *testing.T) {
	fs := memfs.New()
	writeLocal(t, fs, "mods/mod.jar", "jar")

	db, err := versiondb.OpenMem()
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Put(versiondb.Record{
		ProjectID:     "AANobbMI",
		VersionNumber: "1.0",
		SHA1:          sumOf("jar"),
	}))

	// The manifest still points at an old URL, but the database
	// says the latest version was already applied and the file on
	// disk is intact.
	oldURL := "https://cdn.modrinth.com/data/AANobbMI/versions/v0/mod.jar"
	api := &fakeAPI{latest: map[string]*modrinth.Version{
		"AANobbMI": testVersion("AANobbMI", "v1", "1.0", projectURL),
	}}
	p := &Planner{API: api, DB: db, Files: fs}

	m := testManifest(oldURL, "stale")
	plan, err := p.Plan(context.Background(), m)
	require.NoError(t, err)
	assert.Empty(t, plan.Changes)
	assert.Equal(t, 1, plan.UpToDate)
}

func TestPlanMissingDependencies(t *testing.T) {
	p := &Planner{API: &fakeAPI{}, Files: memfs.New()}

	m := testManifest(projectURL, sumOf("jar"))
	delete(m.Dependencies, "minecraft")
	_, err := p.Plan(context.Background(), m)
	assert.Error(t, err)

	m = testManifest(projectURL, sumOf("jar"))
	delete(m.Dependencies, "fabric")
	_, err = p.Plan(context.Background(), m)
	assert.Error(t, err)
}

func TestPlanAdditions(t *testing.T) {
	api := &fakeAPI{versions: map[string]*modrinth.Version{
		"abcdefgh": testVersion("AANobbMI", "abcdefgh", "1.0", projectURL),
	}}
	p := &Planner{API: api, Files: memfs.New()}

	pending := []pack.Pending{
		{VersionID: "abcdefgh", ServerEnv: mrpacker.EnvRequired, ClientEnv: mrpacker.EnvOptional},
		{VersionID: "missing", ServerEnv: mrpacker.EnvOptional, ClientEnv: mrpacker.EnvOptional},
	}
	changes, warnings := p.PlanAdditions(context.Background(), pending)

	require.Len(t, changes, 1)
	c := changes[0]
	assert.True(t, c.Add)
	assert.Equal(t, -1, c.Index)
	assert.Equal(t, mrpacker.EnvRequired, c.Env.Server)
	assert.Equal(t, mrpacker.EnvOptional, c.Env.Client)
	assert.Equal(t, "AANobbMI", c.ProjectID)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing")
}
