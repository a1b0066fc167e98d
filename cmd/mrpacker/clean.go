package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/tie/mrpacker/versiondb"
)

type CleanCommand struct {
}

func (*CleanCommand) Name() string     { return "clean" }
func (*CleanCommand) Synopsis() string { return "remove the version database" }
func (*CleanCommand) Usage() string {
	return `Usage: mrpacker clean

	Removes the recorded version database. The next update run
	re-derives entry state from the index and on-disk hashes.
`
}

func (cmd *CleanCommand) SetFlags(fs *flag.FlagSet) {
}

func (cmd *CleanCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	path := versiondb.DefaultPath
	if err := os.RemoveAll(path); err != nil {
		log.Errorf("clean %q: %+v", path, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
