package main

import (
	"bytes"
	"context"
	"flag"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/pack/hclspec"
)

type FormatCommand struct {
	DisableCheck bool
	Overwrite    bool
	ContextSize  int
}

func (*FormatCommand) Name() string     { return "fmt" }
func (*FormatCommand) Synopsis() string { return "format overrides manifests" }
func (*FormatCommand) Usage() string {
	return `Usage: mrpacker fmt [-c int] [-w] [-nocheck] [overrides paths]

	Formats overrides manifests using standard syntax. It can
	either write files in place or print a unified diff with the
	specified context size.

Flags:
`
}

func (cmd *FormatCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.DisableCheck, "nocheck", false, "disable diagnostics")
	fs.BoolVar(&cmd.Overwrite, "w", false, "write result to (source) file instead of stdout")
	fs.IntVar(&cmd.ContextSize, "c", 3, "output n lines of diff context")
}

func (cmd *FormatCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	var parser *hclparse.Parser
	var diagWr hcl.DiagnosticWriter
	if !cmd.DisableCheck {
		parser = hclparse.NewParser()
		diagWr, _ = newDiagWr(parser)
	}

	paths := fs.Args()
	if len(paths) <= 0 {
		cfg, err := pack.LoadConfig(pack.ConfigName)
		if err != nil {
			log.Errorf("load config: %+v", err)
			return subcommands.ExitFailure
		}
		paths = []string{cfg.OverridesPath}
	} else {
		sort.Strings(paths)
	}

	seen := make(map[string]bool, len(paths))
	for _, fpath := range paths {
		if seen[fpath] {
			continue
		}
		seen[fpath] = true
		src, err := robustio.ReadFile(fpath)
		if err != nil {
			log.Errorf("read overrides %q: %+v", fpath, err)
			return subcommands.ExitFailure
		}

		if !cmd.DisableCheck {
			file, diags := parser.ParseHCL(src, fpath)
			if diags.HasErrors() {
				err := diagWr.WriteDiagnostics(diags)
				if err != nil {
					log.Errorf("write diags: %+v", err)
				}
				return subcommands.ExitFailure
			}
			decodeDiags := gohcl.DecodeBody(file.Body, nil, &hclspec.Overrides{})
			diags = append(diags, decodeDiags...)
			err := diagWr.WriteDiagnostics(diags)
			if err != nil {
				log.Errorf("write diags: %+v", err)
				return subcommands.ExitFailure
			}
			if diags.HasErrors() {
				return subcommands.ExitFailure
			}
		}

		outSrc := hclwrite.Format(src)
		if bytes.Equal(src, outSrc) {
			continue
		}
		if !cmd.Overwrite {
			if err := writeDiffContext(ctx, src, outSrc, fpath, cmd.ContextSize); err != nil {
				log.Errorf("write diff: %+v", err)
				return subcommands.ExitFailure
			}
			continue
		}
		if err := renameio.WriteFile(fpath, outSrc, 0644); err != nil {
			log.Errorf("write file %q: %+v", fpath, err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
