// Package versiondb persists the last applied version per project so
// that update runs can tell a stale entry from an up-to-date one
// without refetching files.
package versiondb

import (
	"encoding/json"
	"fmt"

	"github.com/akrylysov/pogreb"
	"github.com/akrylysov/pogreb/fs"
)

// DefaultPath is the database directory next to the modpack index.
const DefaultPath = "mod_versions.db"

// Record is the last applied version of a project.
type Record struct {
	ProjectID     string `json:"project_id"`
	VersionID     string `json:"version_id"`
	VersionNumber string `json:"version_number"`
	FileURL       string `json:"file_url"`
	FileSize      int64  `json:"file_size"`
	SHA1          string `json:"sha1"`
	SHA512        string `json:"sha512"`
	Loader        string `json:"mod_loader"`
}

type DB struct {
	db *pogreb.DB
}

func Open(path string) (*DB, error) {
	db, err := pogreb.Open(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return &DB{db}, nil
}

// OpenMem opens an in-memory database for dry runs and tests.
func OpenMem() (*DB, error) {
	// BUG pogreb.Open always calls os.MkdirAll
	db, err := pogreb.Open(".", &pogreb.Options{
		FileSystem: fs.Mem,
	})
	if err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func (d *DB) Get(projectID string) (Record, bool, error) {
	var rec Record
	data, err := d.db.Get([]byte(projectID))
	if err != nil {
		return rec, false, err
	}
	if data == nil {
		return rec, false, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("decode record %q: %w", projectID, err)
	}
	return rec, true, nil
}

func (d *DB) Put(rec Record) error {
	data, err := json.Marshal(&rec)
	if err != nil {
		return err
	}
	return d.db.Put([]byte(rec.ProjectID), data)
}

func (d *DB) Delete(projectID string) error {
	return d.db.Delete([]byte(projectID))
}

func (d *DB) Close() error {
	return d.db.Close()
}
