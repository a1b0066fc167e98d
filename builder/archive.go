// Package builder assembles a distributable modpack archive from the
// finalized manifest, the downloaded mod files and the overrides
// manifest. It trusts the downloader's hashes and only checks that
// every referenced file is present.
package builder

import (
	"archive/zip"
	"fmt"
	"io"
	"path"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/pack"
)

// OverridesDir is the archive directory for overrides entries, per
// the Modrinth pack layout.
const OverridesDir = "overrides"

type ArchiveBuilder struct {
	// Files is the pack working tree mod paths resolve against.
	Files billy.Filesystem

	Archive *zip.Writer
}

func NewArchiveBuilder(files billy.Filesystem, w *zip.Writer) *ArchiveBuilder {
	return &ArchiveBuilder{files, w}
}

// AddManifest writes the modpack index into the archive root.
func (b *ArchiveBuilder) AddManifest(m *mrpacker.Manifest) error {
	data, err := pack.EncodeManifest(m)
	if err != nil {
		return err
	}
	w, err := b.Archive.Create(pack.IndexName)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// AddModFiles copies every file the manifest references. A missing
// file aborts the build and names the offender.
func (b *ArchiveBuilder) AddModFiles(m *mrpacker.Manifest) error {
	for _, entry := range m.Files {
		if err := b.addFile(entry.Path, entry.Path); err != nil {
			return err
		}
	}
	return nil
}

// AddOverrides copies resolved overrides entries under overrides/.
func (b *ArchiveBuilder) AddOverrides(files []pack.OverrideFile) error {
	for _, f := range files {
		name := path.Join(OverridesDir, f.Path)
		if err := b.addFile(f.Source, name); err != nil {
			return err
		}
	}
	return nil
}

func (b *ArchiveBuilder) addFile(src, name string) error {
	f, err := b.Files.Open(src)
	if err != nil {
		return fmt.Errorf("%s: %w", src, mrpacker.ErrMissingFile)
	}
	defer func() {
		cerr := f.Close()
		if cerr != nil {
			log.Debugf("close %q: %+v", src, cerr)
		}
	}()
	return b.AddReader(f, name)
}

func (b *ArchiveBuilder) AddReader(r io.Reader, name string) error {
	w, err := b.Archive.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}
