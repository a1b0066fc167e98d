package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tie/mrpacker/pack"
)

// backupTree copies the modpack index and the mod directories into a
// timestamped directory under the backups directory before a run
// rewrites them. Missing pieces are skipped.
func backupTree(cfg pack.Config) error {
	stamp := time.Now().Format("20060102_150405")
	dst := filepath.Join(cfg.BackupsDir, "backup_"+stamp)
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	paths := []string{pack.IndexName, cfg.ModsDir, cfg.ServerDir}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := copyTree(p, filepath.Join(dst, p)); err != nil {
			return err
		}
	}
	log.Infof("backup created at %s", dst)
	return nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(fpath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, fpath)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(fpath, target)
	})
}

func copyFile(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		cerr := in.Close()
		if cerr != nil {
			log.Debugf("close %q: %+v", src, cerr)
		}
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %q: %w", src, err)
	}
	return nil
}
