package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/tie/internal/renameio"
)

type OverridesCommand struct {
	SourceDir  string
	OutputPath string
}

func (*OverridesCommand) Name() string     { return "overrides" }
func (*OverridesCommand) Synopsis() string { return "generate overrides manifest" }
func (*OverridesCommand) Usage() string {
	return `Usage: mrpacker overrides [-d overrides] [-o overrides.pack]

	Generates an overrides manifest with a "file" block for every
	file under the overrides directory. The archive path is the
	path relative to that directory; edit the result to drop or
	remap entries before building.

Flags:
`
}

func (cmd *OverridesCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.SourceDir, "d", "overrides", "overrides directory to scan")
	fs.StringVar(&cmd.OutputPath, "o", "overrides.pack", "manifest output path")
}

func (cmd *OverridesCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	outFile := hclwrite.NewEmptyFile()
	ob := OverridesBuilder{
		Body: outFile.Body(),
	}

	err := filepath.Walk(cmd.SourceDir, func(fpath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(cmd.SourceDir, fpath)
		if err != nil {
			return err
		}
		ob.Add(filepath.ToSlash(rel), filepath.ToSlash(fpath))
		return nil
	})
	if err != nil {
		log.Errorf("scan %q: %+v", cmd.SourceDir, err)
		return subcommands.ExitFailure
	}

	fpath := cmd.OutputPath
	outSrc := outFile.Bytes()
	if err := renameio.WriteFile(fpath, outSrc, 0644); err != nil {
		log.Errorf("write file %q: %+v", fpath, err)
		return subcommands.ExitFailure
	}
	log.Infof("wrote %d entries to %s", ob.Length, fpath)

	return subcommands.ExitSuccess
}

type OverridesBuilder struct {
	*hclwrite.Body
	Length int
}

func (b *OverridesBuilder) Add(path, source string) {
	if b.Length > 0 {
		b.AppendNewline()
	}
	b.Length++

	block := b.AppendNewBlock("file", []string{path})
	body := block.Body()

	body.SetAttributeValue("source", cty.StringVal(source))
}
