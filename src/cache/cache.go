package cache

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	detailSuffix  = "-detail"
	listingSuffix = "-listing"
)

// detailMarkers identify single-entity pages, these change rarely and live longer in the cache
var detailMarkers = []string{"/item=", "/spell=", "/npc=", "/zone="}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Directory       string
	ListingTTLHours int
	DetailTTLHours  int
}

// DefaultCacheConfig returns the cache settings used by the scraper
func DefaultCacheConfig(dir string) CacheConfig {
	return CacheConfig{
		Directory:       dir,
		ListingTTLHours: 24,
		DetailTTLHours:  24 * 7,
	}
}

// FileCachingTransport implements http.RoundTripper with file-based caching
type FileCachingTransport struct {
	config    CacheConfig
	transport http.RoundTripper
	runStart  time.Time
}

// NewFileCachingTransport creates a new caching transport
func NewFileCachingTransport(config CacheConfig, transport http.RoundTripper) *FileCachingTransport {
	return &FileCachingTransport{
		config:    config,
		transport: transport,
		runStart:  time.Now(),
	}
}

// RoundTrip implements http.RoundTripper with caching
func (t *FileCachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cacheKey := t.makeCacheKey(req)
	cachePath := t.cachePath(cacheKey)

	if cachedResp, err := t.readCacheEntry(cacheKey); err == nil && !t.cacheExpired(cachePath) {
		slog.Debug("cache hit", "url", req.URL.String())
		return cachedResp, nil
	}

	slog.Info("fetching", "url", req.URL.String())
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// only complete pages are cached, anything else must be fetched again
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	if err := t.writeCacheEntry(cacheKey, resp); err != nil {
		slog.Warn("failed to write cache entry", "url", req.URL.String(), "error", err)
		return resp, nil
	}

	// DumpResponse consumed the body, serve the copy on disk
	if cachedResp, err := t.readCacheEntry(cacheKey); err == nil {
		return cachedResp, nil
	}

	return resp, nil
}

// makeCacheKey creates a cache key from the request
func (t *FileCachingTransport) makeCacheKey(req *http.Request) string {
	key := req.URL.String()
	md5sum := md5.Sum([]byte(key))
	cacheKey := hex.EncodeToString(md5sum[:])

	for _, marker := range detailMarkers {
		if strings.Contains(req.URL.Path, marker) {
			return cacheKey + detailSuffix
		}
	}
	return cacheKey + listingSuffix
}

// cachePath returns the file path for a cache key
func (t *FileCachingTransport) cachePath(cacheKey string) string {
	return filepath.Join(t.config.Directory, cacheKey)
}

// ttl returns the lifetime of a cache entry based on its key suffix
func (t *FileCachingTransport) ttl(path string) time.Duration {
	if strings.HasSuffix(path, detailSuffix) {
		return time.Duration(t.config.DetailTTLHours) * time.Hour
	}
	return time.Duration(t.config.ListingTTLHours) * time.Hour
}

// cacheExpired checks if a cache file has expired
func (t *FileCachingTransport) cacheExpired(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return true
	}

	age := t.runStart.Sub(stat.ModTime())
	return age >= t.ttl(path)
}

// Prune deletes expired cache entries and returns how many were removed.
// A missing cache directory is not an error.
func (t *FileCachingTransport) Prune() (int, error) {
	entries, err := os.ReadDir(t.config.Directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, detailSuffix) && !strings.HasSuffix(name, listingSuffix) {
			continue
		}
		path := t.cachePath(name)
		if !t.cacheExpired(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove cache entry '%s': %w", name, err)
		}
		removed++
	}

	slog.Debug("pruned cache", "dir", t.config.Directory, "removed", removed)
	return removed, nil
}

// readCacheEntry reads a cached HTTP response
func (t *FileCachingTransport) readCacheEntry(cacheKey string) (*http.Response, error) {
	path := t.cachePath(cacheKey)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), nil)
}

// writeCacheEntry writes an HTTP response to cache
func (t *FileCachingTransport) writeCacheEntry(cacheKey string, resp *http.Response) error {
	path := t.cachePath(cacheKey)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dumpedBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return fmt.Errorf("failed to dump response: %w", err)
	}

	if err := os.WriteFile(path, dumpedBytes, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
