package main

import (
	"bytes"
	"context"
	"flag"
	"html/template"

	"github.com/charmbracelet/log"
	"github.com/google/subcommands"

	"github.com/tie/internal/renameio"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/pack"
)

const modlistTemplate = `<!doctype html>
<ul>
{{range .Files}}
<li><a href="https://modrinth.com/project/{{projectID .}}">{{.Path}}</a></li>
{{end}}
</ul>
`

type ModlistCommand struct {
	OutputPath string
}

func (*ModlistCommand) Name() string     { return "modlist" }
func (*ModlistCommand) Synopsis() string { return "generate modlist page" }
func (*ModlistCommand) Usage() string {
	return `Usage: mrpacker modlist [-o modlist.html]

	Generates an HTML page listing every mod in the modpack index
	with a link to its Modrinth project.

Flags:
`
}

func (cmd *ModlistCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.OutputPath, "o", "modlist.html", "modlist page output path")
}

func (cmd *ModlistCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	tpl := template.New("modlist").Funcs(template.FuncMap{
		"projectID": func(f mrpacker.ModFile) string {
			id, ok := f.ProjectID()
			if !ok {
				return ""
			}
			return id
		},
	})
	tpl, err := tpl.Parse(modlistTemplate)
	if err != nil {
		log.Errorf("parse modlist template: %+v", err)
		return subcommands.ExitFailure
	}

	m, err := pack.LoadManifest(pack.IndexName)
	if err != nil {
		log.Errorf("load %q: %+v", pack.IndexName, err)
		return subcommands.ExitFailure
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, m); err != nil {
		log.Errorf("execute template: %+v", err)
		return subcommands.ExitFailure
	}

	fpath := cmd.OutputPath
	if err := renameio.WriteFile(fpath, buf.Bytes(), 0644); err != nil {
		log.Errorf("write file %q: %+v", fpath, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
