// Package utils fetches remote and local resources for the map, with an optional
// on-disk cache of downloads.
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrNotFound = errors.New("resource not found")

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 { // Log every 5MB
		log.Printf("%s: Downloaded %d MB", pw.label, pw.total/1024/1024)
		pw.last = pw.total
	}
	return n, err
}

// DownloadFile downloads a file from a URL to a local path safely.
func DownloadFile(url, path string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	// Create a temp file in the same directory to ensure atomic move
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			log.Printf("Error removing temp file %s: %v", tmpName, err)
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path)}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Fetcher reads http(s) URLs and local paths. Remote responses are kept in Cache,
// when one is set, for TTL.
type Fetcher struct {
	Client    *http.Client
	Cache     *Cache
	TTL       time.Duration
	LogPrefix string
}

func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns the contents behind location. Missing files and 404 responses
// wrap ErrNotFound.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if !IsRemote(location) {
		data, err := os.ReadFile(strings.TrimPrefix(location, "file://"))
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return data, err
	}

	if f.Cache != nil {
		data, err := f.Cache.Get(location)
		if err != nil {
			log.Printf("%s Cache read failed for %s: %v", f.LogPrefix, location, err)
		} else if data != nil {
			log.Printf("%s Using cached copy of %s", f.LogPrefix, location)
			return data, nil
		}
	}

	log.Printf("%s Fetching %s", f.LogPrefix, location)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		if err := f.Cache.Put(location, data, f.TTL); err != nil {
			log.Printf("%s Cache write failed for %s: %v", f.LogPrefix, location, err)
		}
	}
	return data, nil
}
