package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/google/subcommands"
	"github.com/pkg/diff"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/fetcher"
	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/reconcile"
)

type UpdateCommand struct {
	NewVersion string
	Summary    string
	DryRun     bool
	Sequential bool
}

func (*UpdateCommand) Name() string     { return "update" }
func (*UpdateCommand) Synopsis() string { return "update mods to latest compatible versions" }
func (*UpdateCommand) Usage() string {
	return `Usage: mrpacker update [-version v] [-summary text] [-n] [-seq]

	Queries the latest compatible version for every mod in the
	modpack index, downloads changed files into their environment
	directories, merges new versions and pending additions from
	new.txt into the index and packages the result. Per-mod
	failures are logged and skipped; the run continues.

	With -n the run is simulated: no downloads, no writes, and the
	staged index changes are printed as a unified diff.

Flags:
`
}

func (cmd *UpdateCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.NewVersion, "version", "", "new pack version (default: keep current)")
	fs.StringVar(&cmd.Summary, "summary", "", "new pack summary (default: keep current)")
	fs.BoolVar(&cmd.DryRun, "n", false, "dry run, print staged changes as diff")
	fs.BoolVar(&cmd.Sequential, "seq", false, "force sequential downloads")
}

func (cmd *UpdateCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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
	return runUpdate(ctx, a, cmd.NewVersion, cmd.Summary, cmd.DryRun, cmd.Sequential)
}

// runUpdate is the whole reconciliation pass: plan, fetch, merge,
// save and package. Shared between the subcommand and the shell menu.
func runUpdate(ctx context.Context, a *app, newVersion, summary string, dryRun, sequential bool) subcommands.ExitStatus {
	planner := &reconcile.Planner{
		API:   a.API,
		DB:    a.DB,
		Files: a.Files,
	}

	plan, err := planner.Plan(ctx, a.Manifest)
	if err != nil {
		log.Errorf("plan update: %+v", err)
		return subcommands.ExitFailure
	}
	for _, w := range plan.Warnings {
		log.Warn(w)
	}

	pending, pendWarnings, err := pack.LoadPending(pack.PendingName)
	if err != nil {
		log.Errorf("read %q: %+v", pack.PendingName, err)
		return subcommands.ExitFailure
	}
	for _, w := range pendWarnings {
		log.Warn(w)
	}
	adds, addWarnings := planner.PlanAdditions(ctx, pending)
	for _, w := range addWarnings {
		log.Warn(w)
	}

	changes := append(plan.Changes, adds...)
	log.Infof("%d up-to-date, %d staged", plan.UpToDate, len(changes))

	loader, _, _ := a.Manifest.Loader()
	dl := &fetcher.Fetcher{
		Files:     a.Files,
		Client:    a.API.Client,
		DB:        a.DB,
		ServerDir: a.Config.ServerDir,
		ModsDir:   a.Config.ModsDir,
		Loader:    loader,
		DryRun:    dryRun,
	}

	if dryRun {
		return dryRunDiff(ctx, a, dl, changes, newVersion, summary)
	}

	if err := backupTree(a.Config); err != nil {
		log.Errorf("backup: %+v", err)
		return subcommands.ExitFailure
	}

	var sum fetcher.Summary
	if a.Config.AsyncDownloads && !sequential {
		err := spinner.New().
			Title("Downloading mods...").
			Action(func() {
				sum = dl.ApplyAsync(ctx, a.Manifest, changes)
			}).
			Run()
		if err != nil {
			log.Errorf("progress: %+v", err)
			return subcommands.ExitFailure
		}
	} else {
		sum = dl.Apply(ctx, a.Manifest, changes)
	}

	for _, msg := range sum.Messages {
		log.Info(msg)
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

	// Per-mod failures are reported but do not fail the run.
	log.Infof("update complete: %d updated, %d added, %d failed, wrote %s",
		sum.Updated, sum.Added, sum.Failed, fpath)
	return subcommands.ExitSuccess
}

// dryRunDiff stages commits into a manifest copy and prints the
// resulting index changes as a unified diff.
func dryRunDiff(ctx context.Context, a *app, dl *fetcher.Fetcher, changes []reconcile.Change, newVersion, summary string) subcommands.ExitStatus {
	before, err := pack.EncodeManifest(a.Manifest)
	if err != nil {
		log.Errorf("encode index: %+v", err)
		return subcommands.ExitFailure
	}

	staged := cloneManifest(a.Manifest)
	sum := dl.Apply(ctx, staged, changes)
	if newVersion != "" {
		staged.VersionID = newVersion
	}
	if summary != "" {
		staged.Summary = summary
	}
	after, err := pack.EncodeManifest(staged)
	if err != nil {
		log.Errorf("encode staged index: %+v", err)
		return subcommands.ExitFailure
	}

	if err := writeDiff(ctx, before, after, pack.IndexName); err != nil {
		log.Errorf("write diff: %+v", err)
		return subcommands.ExitFailure
	}
	log.Infof("dry run: %d updated, %d added, %d failed, no changes made",
		sum.Updated, sum.Added, sum.Failed)
	return subcommands.ExitSuccess
}

func writeDiff(ctx context.Context, before, after []byte, fpath string) error {
	return writeDiffContext(ctx, before, after, fpath, 3)
}

func writeDiffContext(ctx context.Context, before, after []byte, fpath string, contextSize int) error {
	aname := "a/" + fpath
	bname := "b/" + fpath
	names := diff.Names(aname, bname)
	opts := []diff.WriteOpt{names}
	if _, color := fdinfo(int(os.Stdout.Fd())); color {
		opts = append(opts, diff.TerminalColor())
	}
	a, b := splitLines(before), splitLines(after)
	pair := diff.Bytes(a, b)
	edit := diff.Myers(ctx, pair)
	if contextSize >= 0 {
		edit = edit.WithContextSize(contextSize)
	}
	_, err := edit.WriteUnified(os.Stdout, pair, opts...)
	return err
}

func cloneManifest(m *mrpacker.Manifest) *mrpacker.Manifest {
	c := *m
	c.Dependencies = make(map[string]string, len(m.Dependencies))
	for k, v := range m.Dependencies {
		c.Dependencies[k] = v
	}
	c.Files = make([]mrpacker.ModFile, len(m.Files))
	for i, f := range m.Files {
		cf := f
		if f.Env != nil {
			env := *f.Env
			cf.Env = &env
		}
		cf.Downloads = append([]string(nil), f.Downloads...)
		c.Files[i] = cf
	}
	return &c
}
