package main

import (
	"bytes"
	"os"

	"github.com/charmbracelet/log"

	"golang.org/x/term"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tie/internal/robustio"

	"github.com/tie/mrpacker/pack/hclspec"
)

func newDiagWr(p *hclparse.Parser) (diagWr hcl.DiagnosticWriter, color bool) {
	files := p.Files()
	stderr := os.Stderr
	fd := int(stderr.Fd())
	istty, color := fdinfo(fd)
	if !istty {
		diagWr := hcl.NewDiagnosticTextWriter(stderr, files, 80, color)
		return diagWr, color
	}
	return hcl.NewDiagnosticTextWriter(stderr, files, termWidth(fd), color), color
}

// termWidth returns the terminal width for wrapping diagnostics,
// falling back to 80 columns when the size is unavailable.
func termWidth(fd int) uint {
	w, _, err := term.GetSize(fd)
	if err != nil {
		log.Debugf("get term size: %+v", err)
		return 80
	}
	if w <= 0 {
		return 80
	}
	return uint(w)
}

func fdinfo(fd int) (istty, color bool) {
	istty = term.IsTerminal(fd)
	if istty {
		color = true
	}
	// See https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color = false
	}
	return
}

// parseOverrides parses overrides manifests. Missing files are
// skipped; parse and decode diagnostics are printed and fail the
// whole set.
func parseOverrides(paths []string) ([]hclspec.Overrides, bool) {
	var ms []hclspec.Overrides

	allOK := true
	for _, path := range paths {
		m, ok := parseOverridesFile(path)
		if !ok {
			allOK = false
			continue
		}
		if m != nil {
			ms = append(ms, *m)
		}
	}
	return ms, allOK
}

func parseOverridesFile(path string) (*hclspec.Overrides, bool) {
	var m hclspec.Overrides
	var diags hcl.Diagnostics

	parser := hclparse.NewParser()
	diagWr, _ := newDiagWr(parser)

	src, err := robustio.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, true
	}
	if err != nil {
		log.Errorf("read %q: %+v", path, err)
		return nil, false
	}

	file, parseDiags := parser.ParseHCL(src, path)
	diags = append(diags, parseDiags...)
	if diags.HasErrors() {
		err := diagWr.WriteDiagnostics(diags)
		if err != nil {
			log.Errorf("write diags: %+v", err)
		}
		return nil, false
	}

	decodeDiags := gohcl.DecodeBody(file.Body, nil, &m)
	diags = append(diags, decodeDiags...)
	if err := diagWr.WriteDiagnostics(diags); err != nil {
		log.Errorf("write diags: %+v", err)
		return nil, false
	}
	if diags.HasErrors() {
		return nil, false
	}

	return &m, true
}

func splitLines(b []byte) [][]byte {
	return bytes.Split(b, []byte("\n"))
}
