package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/fetcher"
	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/reconcile"
)

var (
	modIndexStyle = lipgloss.NewStyle().Faint(true)
	modPathStyle  = lipgloss.NewStyle().Bold(true)
)

func newLoaderSelect(value *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title("Mod loader").
		Options(huh.NewOptions(mrpacker.Loaders...)...).
		Value(value)
}

func newEnvSelect(title string, value *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(
			mrpacker.EnvRequired,
			mrpacker.EnvOptional,
			mrpacker.EnvUnsupported,
		)...).
		Value(value)
}

// addModPrompt resolves a version ID, downloads the file and appends
// the entry to the index.
func addModPrompt(ctx context.Context, a *app) {
	var versionID string
	serverEnv := mrpacker.EnvRequired
	clientEnv := mrpacker.EnvRequired
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Version ID").Value(&versionID),
		newEnvSelect("Server requirement", &serverEnv),
		newEnvSelect("Client requirement", &clientEnv),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return
	}
	if versionID == "" {
		log.Error("empty version ID")
		return
	}

	planner := &reconcile.Planner{API: a.API, DB: a.DB, Files: a.Files}
	changes, warnings := planner.PlanAdditions(ctx, []pack.Pending{{
		VersionID: versionID,
		ServerEnv: serverEnv,
		ClientEnv: clientEnv,
	}})
	for _, w := range warnings {
		log.Warn(w)
	}
	if len(changes) == 0 {
		return
	}

	loader, _, _ := a.Manifest.Loader()
	dl := &fetcher.Fetcher{
		Files:     a.Files,
		Client:    a.API.Client,
		DB:        a.DB,
		ServerDir: a.Config.ServerDir,
		ModsDir:   a.Config.ModsDir,
		Loader:    loader,
	}
	sum := dl.Apply(ctx, a.Manifest, changes)
	for _, msg := range sum.Messages {
		log.Info(msg)
	}
	if sum.Added == 0 {
		return
	}
	if err := a.SaveManifest(); err != nil {
		log.Errorf("save %q: %+v", pack.IndexName, err)
	}
}

func listMods(a *app) {
	if len(a.Manifest.Files) == 0 {
		fmt.Println("No mods found in the modpack.")
		return
	}
	fmt.Println("Mods in the modpack:")
	for i, entry := range a.Manifest.Files {
		projectID, ok := entry.ProjectID()
		if !ok {
			projectID = "unknown"
		}
		fmt.Printf("%s %s %s\n",
			modIndexStyle.Render(fmt.Sprintf("%3d.", i+1)),
			modPathStyle.Render(entry.Path),
			modIndexStyle.Render("("+projectID+")"),
		)
	}
}

// removeModPrompt drops all entries of a project from the index. The
// downloaded files stay on disk; only the manifest forgets them.
func removeModPrompt(a *app) {
	listMods(a)

	var projectID string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Project ID of the mod to remove").Value(&projectID),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return
	}
	if projectID == "" {
		return
	}

	kept := a.Manifest.Files[:0]
	removed := 0
	for _, entry := range a.Manifest.Files {
		id, ok := entry.ProjectID()
		if ok && id == projectID {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	a.Manifest.Files = kept

	if removed == 0 {
		log.Warnf("no mod with project ID %s found", projectID)
		return
	}
	if err := a.DB.Delete(projectID); err != nil {
		log.Warnf("version db delete %q: %+v", projectID, err)
	}
	log.Infof("removed %d entry(ies) for project %s", removed, projectID)
	if err := a.SaveManifest(); err != nil {
		log.Errorf("save %q: %+v", pack.IndexName, err)
	}
}

// updateDepsPrompt edits the Minecraft version and the mod loader
// pair in the index dependencies.
func updateDepsPrompt(a *app) {
	gameVersion, _ := a.Manifest.GameVersion()
	loader, loaderVersion, ok := a.Manifest.Loader()
	if !ok {
		loader = "fabric"
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Minecraft version").
			Value(&gameVersion),
		newLoaderSelect(&loader),
		huh.NewInput().
			Title("Mod loader version").
			Value(&loaderVersion),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return
	}
	if gameVersion == "" || loaderVersion == "" {
		log.Error("game version and loader version must be set")
		return
	}

	a.Manifest.Dependencies[mrpacker.GameDependency] = gameVersion
	a.Manifest.SetLoader(loader, loaderVersion)
	log.Info("modpack dependencies updated")
	if err := a.SaveManifest(); err != nil {
		log.Errorf("save %q: %+v", pack.IndexName, err)
	}
}

// configurePrompt edits the updater settings and persists them.
func configurePrompt(a *app) {
	cfg := a.Config
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Logging level").
			Options(huh.NewOptions(pack.LogLevels...)...).
			Value(&cfg.LoggingLevel),
		huh.NewConfirm().
			Title("Concurrent downloads").
			Value(&cfg.AsyncDownloads),
		huh.NewInput().Title("Server mods directory").Value(&cfg.ServerDir),
		huh.NewInput().Title("Client mods directory").Value(&cfg.ModsDir),
		huh.NewInput().Title("Backups directory").Value(&cfg.BackupsDir),
		huh.NewInput().Title("Logs directory").Value(&cfg.LogsDir),
		huh.NewInput().Title("Overrides manifest").Value(&cfg.OverridesPath),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return
	}

	if err := pack.SaveConfig(pack.ConfigName, cfg); err != nil {
		log.Errorf("save %q: %+v", pack.ConfigName, err)
		return
	}
	a.Config = cfg
	log.Info("updater configuration saved")
}
