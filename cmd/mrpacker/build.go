package main

import (
	"archive/zip"
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/tie/mrpacker/builder"
	"github.com/tie/mrpacker/pack"
)

type BuildCommand struct {
	NewVersion string
	Summary    string
}

func (*BuildCommand) Name() string     { return "build" }
func (*BuildCommand) Synopsis() string { return "package the modpack without updating" }
func (*BuildCommand) Usage() string {
	return `Usage: mrpacker build [-version v] [-summary text]

	Packages the current modpack index, the referenced mod files
	and the overrides manifest entries into a .mrpack archive. No
	mods are updated or downloaded; a referenced file missing from
	disk aborts the build.

Flags:
`
}

func (cmd *BuildCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.NewVersion, "version", "", "new pack version (default: keep current)")
	fs.StringVar(&cmd.Summary, "summary", "", "new pack summary (default: keep current)")
}

func (cmd *BuildCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, err := loadApp(false)
	if err != nil {
		log.Errorf("startup: %+v", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if cmd.NewVersion != "" && cmd.NewVersion == a.Manifest.VersionID {
		log.Errorf("new version %q equals current version", cmd.NewVersion)
		return subcommands.ExitFailure
	}
	return runBuild(a, cmd.NewVersion, cmd.Summary)
}

// runBuild packages the pack as-is: backup, optional version bump,
// save, archive. Shared between the subcommand and the shell menu.
func runBuild(a *app, newVersion, summary string) subcommands.ExitStatus {
	if err := backupTree(a.Config); err != nil {
		log.Errorf("backup: %+v", err)
		return subcommands.ExitFailure
	}

	if newVersion != "" {
		a.Manifest.VersionID = newVersion
	}
	if summary != "" {
		a.Manifest.Summary = summary
	}
	if err := a.SaveManifest(); err != nil {
		log.Errorf("save %q: %+v", pack.IndexName, err)
		return subcommands.ExitFailure
	}

	fpath, err := buildPackage(a)
	if err != nil {
		log.Errorf("package: %+v", err)
		return subcommands.ExitFailure
	}
	log.Infof("wrote %s", fpath)
	return subcommands.ExitSuccess
}

// buildPackage writes <versionId>.mrpack from the final manifest
// state. It trusts the hashes committed by the downloader.
func buildPackage(a *app) (fpath string, err error) {
	ms, ok := parseOverrides([]string{a.Config.OverridesPath})
	if !ok {
		return "", fmt.Errorf("parse overrides %q failed", a.Config.OverridesPath)
	}
	overrides := pack.OverrideList(ms)

	fpath = fmt.Sprintf("%s.mrpack", a.Manifest.VersionID)
	file, err := os.Create(fpath)
	if err != nil {
		return "", err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	z := zip.NewWriter(w)

	b := builder.NewArchiveBuilder(a.Files, z)
	if err := b.AddManifest(a.Manifest); err != nil {
		return "", err
	}
	if err := b.AddModFiles(a.Manifest); err != nil {
		return "", err
	}
	if err := b.AddOverrides(overrides); err != nil {
		return "", err
	}

	if err := z.Close(); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return fpath, nil
}
