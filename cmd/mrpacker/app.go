package main

import (
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/modrinth"
	"github.com/tie/mrpacker/pack"
	"github.com/tie/mrpacker/versiondb"
)

// app bundles the documents and services a command run needs. No
// globals: every component receives it explicitly.
type app struct {
	Config   pack.Config
	Manifest *mrpacker.Manifest
	DB       *versiondb.DB
	Files    billy.Filesystem
	API      *modrinth.Client

	runLog *os.File
}

// loadApp loads config and manifest from the working directory and
// opens the version database. A missing manifest is fatal unless
// allowMissing is set (the shell offers guided setup instead).
func loadApp(allowMissing bool) (*app, error) {
	cfg, err := pack.LoadConfig(pack.ConfigName)
	if err != nil {
		return nil, err
	}

	runLog, err := setupLogging(cfg)
	if err != nil {
		return nil, err
	}

	m, err := pack.LoadManifest(pack.IndexName)
	if err != nil {
		if !os.IsNotExist(err) || !allowMissing {
			closeQuiet(runLog)
			return nil, err
		}
		m = nil
	}

	db, err := versiondb.Open(versiondb.DefaultPath)
	if err != nil {
		closeQuiet(runLog)
		return nil, err
	}

	return &app{
		Config:   cfg,
		Manifest: m,
		DB:       db,
		Files:    osfs.New("."),
		API: &modrinth.Client{
			Client:    &http.Client{},
			UserAgent: userAgent,
		},
		runLog: runLog,
	}, nil
}

func (a *app) Close() {
	if err := a.DB.Close(); err != nil {
		log.Errorf("close version db: %+v", err)
	}
	closeQuiet(a.runLog)
}

// SaveManifest persists the index; every mutating operation ends with
// an explicit call to this.
func (a *app) SaveManifest() error {
	return pack.SaveManifest(pack.IndexName, a.Manifest)
}

func closeQuiet(f *os.File) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		log.Errorf("close %q: %+v", f.Name(), err)
	}
}
