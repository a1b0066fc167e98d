package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"
)

const (
	programName = "mrpacker"
	userAgent   = "tie/mrpacker (modpack updater)"
)

func main() {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.Bool("h", false, "alias for help")
	fs.Bool("help", false, "print usage")

	cdr := subcommands.NewCommander(fs, programName)
	cdr.Register(&ShellCommand{}, "")
	cdr.Register(&UpdateCommand{}, "")
	cdr.Register(&BuildCommand{}, "")
	cdr.Register(&FormatCommand{}, "")
	cdr.Register(&OverridesCommand{}, "")
	cdr.Register(&ModlistCommand{}, "")
	cdr.Register(&CleanCommand{}, "")
	cdr.Register(cdr.HelpCommand(), "help")
	cdr.Register(cdr.FlagsCommand(), "help")
	cdr.Register(cdr.CommandsCommand(), "help")

	// Bare invocation drops into the interactive menu.
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"shell"}
	}
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	switch cdr.Execute(ctx) {
	case subcommands.ExitFailure:
		os.Exit(1)
	case subcommands.ExitUsageError:
		os.Exit(2)
	}
}
