// Package modrinth implements a minimal client for the Modrinth v2
// API, covering version lookup by ID and latest-version queries
// filtered by game version and mod loader.
package modrinth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tie/mrpacker"
)

const DefaultBaseURL = "https://api.modrinth.com/v2"

// Responses larger than this are cut off; version documents are
// a few KiB at most.
const maxResponseSize = 1 << 20

type Client struct {
	// BaseURL is the API root without trailing slash. Empty means
	// DefaultBaseURL.
	BaseURL string

	Client *http.Client

	// UserAgent is sent with every request, as Modrinth asks
	// clients to identify themselves.
	UserAgent string
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

// GetVersion fetches version metadata by version ID. Returns
// mrpacker.ErrNotFound when the host has no such version.
func (c *Client) GetVersion(ctx context.Context, versionID string) (*Version, error) {
	u := fmt.Sprintf("%s/version/%s", c.base(), url.PathEscape(versionID))
	var v Version
	if err := c.getJSON(ctx, u, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetLatestVersion fetches the most recently published version of the
// project compatible with the given game version and loader. Returns
// mrpacker.ErrNotFound when no version matches.
func (c *Client) GetLatestVersion(ctx context.Context, projectID, gameVersion, loader string) (*Version, error) {
	q := url.Values{}
	q.Set("loaders", jsonList(loader))
	q.Set("game_versions", jsonList(gameVersion))
	u := fmt.Sprintf("%s/project/%s/version?%s", c.base(), url.PathEscape(projectID), q.Encode())

	var versions []Version
	if err := c.getJSON(ctx, u, &versions); err != nil {
		return nil, err
	}

	// The API already filters, but double-check the exact pair and
	// break ties on publish date. The list comes newest-first, so
	// equal timestamps resolve to the earlier index.
	var best *Version
	for i := range versions {
		v := &versions[i]
		if !v.Compatible(gameVersion, loader) {
			continue
		}
		if best == nil || v.DatePublished.After(best.DatePublished) {
			best = v
		}
	}
	if best == nil {
		return nil, fmt.Errorf("project %s (%s, %s): %w", projectID, gameVersion, loader, mrpacker.ErrNotFound)
	}
	return best, nil
}

func (c *Client) getJSON(ctx context.Context, rawurl string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	r := resp.Body
	defer func() {
		err := r.Close()
		if err != nil {
			log.Debugf("close %q: %+v", rawurl, err)
		}
	}()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", rawurl, mrpacker.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: unexpected status %s", rawurl, resp.Status)
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r, maxResponseSize))
	return dec.Decode(out)
}

// jsonList renders the single-element JSON array the version listing
// endpoint expects for its filter parameters.
func jsonList(s string) string {
	b, _ := json.Marshal([]string{s})
	return string(b)
}

type Version struct {
	ID            string       `json:"id"`
	ProjectID     string       `json:"project_id"`
	Name          string       `json:"name"`
	VersionNumber string       `json:"version_number"`
	DatePublished time.Time    `json:"date_published"`
	VersionType   string       `json:"version_type"`
	Loaders       []string     `json:"loaders"`
	GameVersions  []string     `json:"game_versions"`
	Files         []File       `json:"files"`
	Dependencies  []Dependency `json:"dependencies"`
}

type File struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
	Hashes   Hashes `json:"hashes"`
}

type Hashes struct {
	SHA1   string `json:"sha1"`
	SHA512 string `json:"sha512"`
}

type Dependency struct {
	VersionID      string `json:"version_id"`
	ProjectID      string `json:"project_id"`
	DependencyType string `json:"dependency_type"`
}

// Compatible reports whether the version lists both the exact game
// version and the loader.
func (v *Version) Compatible(gameVersion, loader string) bool {
	return contains(v.GameVersions, gameVersion) && contains(v.Loaders, loader)
}

// PrimaryFile returns the file marked primary, or the first file when
// none is marked.
func (v *Version) PrimaryFile() (File, bool) {
	if len(v.Files) == 0 {
		return File{}, false
	}
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	return v.Files[0], true
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
