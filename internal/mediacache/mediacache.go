// ABOUTME: On-disk image cache for article media, keyed deterministically by URL
// ABOUTME: At-most-once downloads with per-image, silently contained failures

package mediacache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxImageSize caps a single cached download.
const MaxImageSize = 10 * 1024 * 1024 // 10MB

// maxParallel bounds concurrent downloads per batch. Failures stay independent
// regardless: one bad image never aborts its siblings.
const maxParallel = 4

// Cache maps (userID, articleID, remote image URL) to local files under root.
// Entries are content-addressed by URL and never invalidated; a changed remote
// image at the same URL is accepted staleness. Caching is an offline/perf
// optimization only, never a correctness dependency.
type Cache struct {
	root   string
	client *http.Client
	log    *log.Logger
}

// New creates a cache rooted at dir.
func New(dir string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		root:   dir,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger,
	}
}

// PathFor returns the local file path for a remote image URL. It is a pure
// function of its three inputs: existence on disk is the only cache state.
// The filename is a version-5 UUID of the URL plus the URL's file extension.
func (c *Cache) PathFor(userID string, articleID int64, rawURL string) string {
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL)).String()
	if ext := urlExtension(rawURL); ext != "" {
		name += ext
	}
	return filepath.Join(c.root, userID, strconv.FormatInt(articleID, 10), name)
}

// Ensure guarantees the image at rawURL is cached for (userID, articleID).
// If the file already exists no network access happens. Download failures are
// reported as false and logged, never raised: the caller proceeds treating
// that single image as uncached.
func (c *Cache) Ensure(ctx context.Context, userID string, articleID int64, rawURL string) bool {
	dest := c.PathFor(userID, articleID, rawURL)
	if _, err := os.Stat(dest); err == nil {
		return true
	}

	if err := c.download(ctx, rawURL, dest); err != nil {
		c.log.Debug("image cache miss left uncached", "url", rawURL, "err", err)
		return false
	}
	return true
}

// EnsureAll caches every URL for one article with bounded parallelism and
// returns how many are cached afterward.
func (c *Cache) EnsureAll(ctx context.Context, userID string, articleID int64, urls []string) int {
	var cached atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(maxParallel)
	for _, u := range urls {
		g.Go(func() error {
			if c.Ensure(ctx, userID, articleID, u) {
				cached.Add(1)
			}
			return nil // per-image failures are contained in Ensure
		})
	}
	g.Wait()

	return int(cached.Load())
}

// Resolve returns the local cached path when the file exists on disk, else the
// original remote URL. Resolution happens at render time; stored article text
// is never rewritten to embed local paths.
func (c *Cache) Resolve(userID string, articleID int64, rawURL string) string {
	p := c.PathFor(userID, articleID, rawURL)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return rawURL
}

func (c *Cache) download(ctx context.Context, rawURL, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "stash/1.0 (read-it-later)")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return fmt.Errorf("read image body: %w", err)
	}
	if int64(len(body)) > MaxImageSize {
		return fmt.Errorf("image too large (exceeds %d bytes)", MaxImageSize)
	}

	// Write-then-rename so a partial download never passes the existence check.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize image: %w", err)
	}
	return nil
}

// urlExtension extracts a short, safe file extension from a URL path.
func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
