// Package fetcher downloads staged mod files into their environment
// directories, verifies integrity and merges the results back into
// the manifest. Sequential and pooled modes produce the same final
// manifest state: downloads may interleave, the commit never does.
package fetcher

import (
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/tie/mrpacker"
	"github.com/tie/mrpacker/modrinth"
	"github.com/tie/mrpacker/reconcile"
	"github.com/tie/mrpacker/versiondb"
)

// DefaultWorkers bounds the pool in async mode.
const DefaultWorkers = 4

type Fetcher struct {
	// Files is the pack working tree all downloads land in.
	Files billy.Filesystem

	Client *http.Client

	// DB records applied versions; nil disables recording.
	DB *versiondb.DB

	// ServerDir receives server-only mods, ModsDir everything else.
	ServerDir string
	ModsDir   string

	// Workers is the pool size for ApplyAsync; 0 means
	// DefaultWorkers.
	Workers int

	// Loader is recorded with each version database entry.
	Loader string

	// DryRun stages commits into the manifest without touching
	// the network, disk or database.
	DryRun bool
}

// Result is the outcome of one staged change, in staging order.
type Result struct {
	Change reconcile.Change
	Path   string
	Err    error
}

// Summary counts the merge outcome of an apply run.
type Summary struct {
	Updated  int
	Added    int
	Failed   int
	Messages []string
}

// Apply downloads every staged change sequentially and commits the
// results. Per-change failures are collected, never fatal.
func (dl *Fetcher) Apply(ctx context.Context, m *mrpacker.Manifest, changes []reconcile.Change) Summary {
	results := dl.stage(m, changes)
	for i, c := range changes {
		if results[i].Err != nil {
			continue
		}
		results[i] = dl.download(ctx, m, c)
	}
	return dl.commit(m, results)
}

// ApplyAsync downloads staged changes with a bounded worker pool and
// commits the results in a single-threaded merge after all workers
// finish. Each worker owns its change end-to-end; the results slice
// is the only shared structure and every worker writes a distinct
// index.
func (dl *Fetcher) ApplyAsync(ctx context.Context, m *mrpacker.Manifest, changes []reconcile.Change) Summary {
	workers := dl.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(changes) {
		workers = len(changes)
	}

	results := dl.stage(m, changes)
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = dl.download(ctx, m, changes[i])
			}
		}()
	}
	for i := range changes {
		if results[i].Err != nil {
			continue
		}
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return dl.commit(m, results)
}

// stage resolves the target path of every change before any download.
// A filename containing a path separator fails its change, and so does
// a path already held by another manifest entry or an earlier staged
// change. Screened paths are unique, so the committed index stays
// valid and no two workers share a temporary file.
func (dl *Fetcher) stage(m *mrpacker.Manifest, changes []reconcile.Change) []Result {
	results := make([]Result, len(changes))

	taken := make(map[string]bool, len(m.Files)+len(changes))
	for _, f := range m.Files {
		taken[f.Path] = true
	}
	for i, c := range changes {
		res := Result{Change: c}
		name := c.File.Filename
		if name == "" || strings.ContainsAny(name, `/\`) {
			res.Err = fmt.Errorf("%q: %w", name, mrpacker.ErrBadFilename)
			results[i] = res
			continue
		}
		res.Path = path.Join(dl.targetDir(m, c), name)

		// An update may keep its own path; anything else taken is
		// a collision.
		self := !c.Add && c.Index >= 0 && c.Index < len(m.Files) &&
			m.Files[c.Index].Path == res.Path
		if taken[res.Path] && !self {
			res.Err = fmt.Errorf("%s: %w", res.Path, mrpacker.ErrDuplicatePath)
			results[i] = res
			continue
		}
		taken[res.Path] = true
		results[i] = res
	}
	return results
}

// download fetches one staged file into its target directory under a
// temporary name, verifies the hashes and moves it into place. The
// previously downloaded file, if any, is left untouched on failure.
func (dl *Fetcher) download(ctx context.Context, m *mrpacker.Manifest, c reconcile.Change) Result {
	res := Result{Change: c}

	dir := dl.targetDir(m, c)
	res.Path = path.Join(dir, c.File.Filename)

	if dl.DryRun {
		return res
	}

	if err := dl.Files.MkdirAll(dir, 0755); err != nil {
		res.Err = fmt.Errorf("mkdir %q: %w", dir, err)
		return res
	}

	tmp := res.Path + ".part"
	sums, size, err := dl.fetchFile(ctx, tmp, c.File.URL)
	if err != nil {
		if rerr := dl.Files.Remove(tmp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			log.Debugf("remove %q: %+v", tmp, rerr)
		}
		res.Err = fmt.Errorf("download %q: %w", c.File.URL, err)
		return res
	}
	if err := verify(c.File, sums, size); err != nil {
		if rerr := dl.Files.Remove(tmp); rerr != nil {
			log.Debugf("remove %q: %+v", tmp, rerr)
		}
		res.Err = fmt.Errorf("%s: %w", res.Path, err)
		return res
	}
	if err := dl.Files.Rename(tmp, res.Path); err != nil {
		res.Err = fmt.Errorf("rename %q: %w", res.Path, err)
		return res
	}
	return res
}

func (dl *Fetcher) targetDir(m *mrpacker.Manifest, c reconcile.Change) string {
	if dl.targetServer(m, c) {
		return dl.ServerDir
	}
	return dl.ModsDir
}

func (dl *Fetcher) targetServer(m *mrpacker.Manifest, c reconcile.Change) bool {
	env := c.Env
	if !c.Add && c.Index >= 0 && c.Index < len(m.Files) {
		e := m.Files[c.Index].Env
		if e == nil {
			return false
		}
		env = *e
	}
	return env.Server == mrpacker.EnvRequired && env.Client == mrpacker.EnvUnsupported
}

// fetchFile streams the URL into fpath while hashing, the same
// multi-writer pipeline used for checksum manifests.
func (dl *Fetcher) fetchFile(ctx context.Context, fpath, rawurl string) (mrpacker.Hashes, int64, error) {
	var sums mrpacker.Hashes

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return sums, 0, err
	}
	resp, err := dl.Client.Do(req)
	if err != nil {
		return sums, 0, err
	}
	r := resp.Body
	defer func() {
		cerr := r.Close()
		if cerr != nil {
			log.Debugf("close %q: %+v", rawurl, cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return sums, 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	h1 := sha1.New()
	h512 := sha512.New()

	flags := os.O_WRONLY | os.O_TRUNC | os.O_CREATE
	f, err := dl.Files.OpenFile(fpath, flags, 0644)
	if err != nil {
		return sums, 0, err
	}
	w := io.MultiWriter(h1, h512, f)
	n, err := io.Copy(w, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return sums, n, err
	}

	sums.SHA1 = fmt.Sprintf("%x", h1.Sum(nil))
	sums.SHA512 = fmt.Sprintf("%x", h512.Sum(nil))
	return sums, n, nil
}

func verify(file modrinth.File, sums mrpacker.Hashes, size int64) error {
	if file.Hashes.SHA1 != "" && file.Hashes.SHA1 != sums.SHA1 {
		return mrpacker.ErrSumsMismatch
	}
	if file.Hashes.SHA512 != "" && file.Hashes.SHA512 != sums.SHA512 {
		return mrpacker.ErrSumsMismatch
	}
	if file.Size > 0 && file.Size != size {
		return mrpacker.ErrSumsMismatch
	}
	return nil
}

// commit merges download results into the manifest in staging order.
// Failed entries keep their previous state; successful updates drop
// the stale file when the path changed and refresh the version
// database record.
func (dl *Fetcher) commit(m *mrpacker.Manifest, results []Result) Summary {
	var s Summary
	for _, res := range results {
		c := res.Change
		if res.Err != nil {
			s.Failed++
			s.Messages = append(s.Messages, fmt.Sprintf("failed %s: %v", c.File.Filename, res.Err))
			continue
		}

		if c.Add {
			env := c.Env
			m.Files = append(m.Files, mrpacker.ModFile{
				Path: res.Path,
				Hashes: mrpacker.Hashes{
					SHA1:   c.File.Hashes.SHA1,
					SHA512: c.File.Hashes.SHA512,
				},
				Env:       &env,
				Downloads: []string{c.File.URL},
				FileSize:  c.File.Size,
			})
			s.Added++
			s.Messages = append(s.Messages, fmt.Sprintf("added %s version %s", c.File.Filename, c.Version.VersionNumber))
		} else {
			entry := &m.Files[c.Index]
			if old := entry.Path; old != res.Path && !dl.DryRun {
				err := dl.Files.Remove(old)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					log.Warnf("remove stale %q: %+v", old, err)
				}
			}
			entry.Path = res.Path
			entry.Hashes.SHA1 = c.File.Hashes.SHA1
			entry.Hashes.SHA512 = c.File.Hashes.SHA512
			entry.Downloads = []string{c.File.URL}
			entry.FileSize = c.File.Size
			s.Updated++
			s.Messages = append(s.Messages, fmt.Sprintf("updated %s to version %s", c.File.Filename, c.Version.VersionNumber))
		}

		if dl.DB == nil || dl.DryRun {
			continue
		}
		err := dl.DB.Put(versiondb.Record{
			ProjectID:     c.ProjectID,
			VersionID:     c.Version.ID,
			VersionNumber: c.Version.VersionNumber,
			FileURL:       c.File.URL,
			FileSize:      c.File.Size,
			SHA1:          c.File.Hashes.SHA1,
			SHA512:        c.File.Hashes.SHA512,
			Loader:        dl.Loader,
		})
		if err != nil {
			log.Warnf("version db put %q: %+v", c.ProjectID, err)
		}
	}
	return s
}
