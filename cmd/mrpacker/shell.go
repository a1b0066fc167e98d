package main

import (
	"context"
	"flag"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/tie/mrpacker/pack"
)

// Menu entries, in display order.
const (
	menuAdd       = "Add a mod"
	menuList      = "List mods"
	menuRemove    = "Remove a mod"
	menuUpdate    = "Update modpack"
	menuBuild     = "Build modpack"
	menuConfigure = "Configure updater settings"
	menuDeps      = "Update modpack dependencies"
	menuExit      = "Exit"
)

type ShellCommand struct{}

func (*ShellCommand) Name() string     { return "shell" }
func (*ShellCommand) Synopsis() string { return "interactive modpack updater menu" }
func (*ShellCommand) Usage() string {
	return `Usage: mrpacker shell

	Opens the interactive menu. This is also what a bare
	"mrpacker" invocation runs. Every mutating operation ends
	with an explicit save of the modpack index; choosing Exit
	saves and quits.
`
}

func (*ShellCommand) SetFlags(fs *flag.FlagSet) {}

func (cmd *ShellCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := loadApp(true)
	if err != nil {
		log.Errorf("startup: %+v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if a.Manifest == nil {
		if !guidedSetup(a) {
			return subcommands.ExitFailure
		}
	}

	for {
		var choice string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Modpack Updater Menu").
				Options(huh.NewOptions(
					menuAdd,
					menuList,
					menuRemove,
					menuUpdate,
					menuBuild,
					menuConfigure,
					menuDeps,
					menuExit,
				)...).
				Value(&choice),
		))
		if err := form.Run(); err != nil {
			log.Errorf("menu: %+v", err)
			return subcommands.ExitFailure
		}

		// Per-operation failures return to the menu; only a
		// broken prompt loop aborts the shell.
		switch choice {
		case menuAdd:
			addModPrompt(ctx, a)
		case menuList:
			listMods(a)
		case menuRemove:
			removeModPrompt(a)
		case menuUpdate:
			updatePrompt(ctx, a)
		case menuBuild:
			buildPrompt(a)
		case menuConfigure:
			configurePrompt(a)
		case menuDeps:
			updateDepsPrompt(a)
		case menuExit:
			if err := a.SaveManifest(); err != nil {
				log.Errorf("save %q: %+v", pack.IndexName, err)
				return subcommands.ExitFailure
			}
			return subcommands.ExitSuccess
		}
	}
}

// guidedSetup creates a fresh modpack index when none exists.
func guidedSetup(a *app) bool {
	log.Infof("%s not found, starting guided setup", pack.IndexName)

	var name, version, gameVersion, loaderVersion string
	loader := "fabric"
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Modpack name").Value(&name),
		huh.NewInput().Title("Initial version").Placeholder("1.0.0").Value(&version),
		huh.NewInput().Title("Minecraft version").Placeholder("1.20.1").Value(&gameVersion),
		newLoaderSelect(&loader),
		huh.NewInput().Title("Mod loader version").Value(&loaderVersion),
	))
	if err := form.Run(); err != nil {
		log.Errorf("setup: %+v", err)
		return false
	}

	a.Manifest = pack.NewManifest(name, version, gameVersion, loader, loaderVersion)
	if err := a.SaveManifest(); err != nil {
		log.Errorf("save %q: %+v", pack.IndexName, err)
		return false
	}
	log.Infof("created %s", pack.IndexName)
	return true
}

// updatePrompt gathers version, summary and dry-run choice, then
// runs the update pass.
func updatePrompt(ctx context.Context, a *app) {
	newVersion, summary, ok := versionPrompt(a, "update")
	if !ok {
		return
	}

	var dryRun bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("Perform a dry run?").Value(&dryRun),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return
	}

	runUpdate(ctx, a, newVersion, summary, dryRun, false)
}

func buildPrompt(a *app) {
	newVersion, summary, ok := versionPrompt(a, "build")
	if !ok {
		return
	}
	runBuild(a, newVersion, summary)
}

// versionPrompt asks for the new pack version and summary. The new
// version must differ from the current one.
func versionPrompt(a *app, verb string) (version, summary string, ok bool) {
	log.Infof("current version is %s", a.Manifest.VersionID)
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("New version number").
			Description("must differ from the current version").
			Value(&version),
		huh.NewInput().
			Title("Summary for this "+verb).
			Value(&summary),
	))
	if err := form.Run(); err != nil {
		log.Errorf("prompt: %+v", err)
		return "", "", false
	}
	if version == "" || version == a.Manifest.VersionID {
		log.Errorf("new version must differ from current version %q", a.Manifest.VersionID)
		return "", "", false
	}
	return version, summary, true
}
