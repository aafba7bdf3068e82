// Package resources implements the bytes-by-identifier loader
// boundary shared by the bpe and unigram packages: given a vocabulary
// or model identifier, resolve it to bytes from a local file (mmapped
// when practical), an embedded default, or an HTTP(S) URL.
package resources

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

//go:embed all:data
var embedded embed.FS

// Dir, when non-empty, is searched first for a resource before
// falling back to the embedded defaults or a bare HTTP(S) identifier.
// It is empty unless a caller assigns it; the commands in this module
// do not set it.
var Dir string

// Fetch resolves rsrc to its bytes. Resolution order: an explicit
// local path (Dir/rsrc, or rsrc itself if it already names an
// existing file), the embedded default data set, then — if rsrc looks
// like an HTTP(S) URL — a network fetch with progress logging.
func Fetch(ctx context.Context, rsrc string) ([]byte, error) {
	if b, err := fetchLocal(rsrc); err == nil {
		return b, nil
	}
	if b, err := fetchEmbedded(rsrc); err == nil {
		return b, nil
	}
	if strings.HasPrefix(rsrc, "http://") || strings.HasPrefix(rsrc, "https://") {
		return fetchHTTP(ctx, rsrc, "")
	}
	return nil, fmt.Errorf("resources: %q not found locally, embedded, or as a URL", rsrc)
}

func fetchLocal(rsrc string) ([]byte, error) {
	candidates := []string{rsrc}
	if Dir != "" {
		candidates = append([]string{filepath.Join(Dir, rsrc)}, candidates...)
	}
	for _, path := range candidates {
		if b, err := readMmapped(path); err == nil {
			return b, nil
		}
	}
	return nil, os.ErrNotExist
}

func fetchEmbedded(rsrc string) ([]byte, error) {
	return embedded.ReadFile("data/" + rsrc)
}

// fetchHTTP performs a GET, sending auth as a bearer token when it is
// non-empty (Fetch always passes ""), and logs download progress via a
// writeCounter: on the first write, then at most every 10 seconds.
func fetchHTTP(ctx context.Context, uri, auth string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resources: HTTP status %d fetching %s", resp.StatusCode, uri)
	}

	counter := &writeCounter{path: uri, size: uint64(resp.ContentLength)}
	return io.ReadAll(io.TeeReader(resp.Body, counter))
}

// writeCounter logs download progress the way the teacher's resolver
// does: a humanized byte count, no more often than every 10 seconds.
type writeCounter struct {
	total uint64
	size  uint64
	path  string
	last  time.Time
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.total += uint64(n)
	if time.Since(wc.last).Seconds() > 10 {
		wc.last = time.Now()
		logProgress(wc.path, wc.total, wc.size)
	}
	return n, nil
}

func logProgress(path string, total, size uint64) {
	if size > 0 {
		log.Printf("downloading %s... %s / %s completed", path, humanize.Bytes(total), humanize.Bytes(size))
	} else {
		log.Printf("downloading %s... %s completed", path, humanize.Bytes(total))
	}
}
