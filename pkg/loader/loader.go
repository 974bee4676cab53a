// Package loader fetches the graph document once, from an http(s) URL or a
// local file.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
	"github.com/vanderheijden86/hubgraph/pkg/metrics"
	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// DefaultSource is where the site publishes the document.
const DefaultSource = "/data/graph.json"

// maxDocumentSize bounds how much of a response is read.
const maxDocumentSize = 32 << 20

var (
	// ErrFetch reports that the document could not be retrieved.
	ErrFetch = errors.New("fetch graph document")
	// ErrDecode reports that the document was retrieved but is not a graph.
	ErrDecode = errors.New("decode graph document")
)

// Options configures Fetch.
type Options struct {
	// Client performs http(s) requests. Nil uses a client with a 15s
	// timeout.
	Client *http.Client
	// BaseURL resolves relative sources. When empty, relative sources are
	// read from disk.
	BaseURL string
}

// Fetch retrieves and decodes the document named by src.
func Fetch(ctx context.Context, src string, opts Options) (model.GraphData, error) {
	defer metrics.Timer(metrics.DocumentLoad)()
	defer debug.LogEnterExit("loader.Fetch " + src)()

	target, remote, err := Resolve(src, opts.BaseURL)
	if err != nil {
		return model.GraphData{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	var raw []byte
	if remote {
		raw, err = fetchHTTP(ctx, target, opts.Client)
	} else {
		raw, err = os.ReadFile(target)
		if err != nil {
			err = fmt.Errorf("%w: %v", ErrFetch, err)
		}
	}
	if err != nil {
		debug.Log("fetch %s failed: %v", target, err)
		return model.GraphData{}, err
	}

	data, err := model.Parse(stripBOM(raw))
	if err != nil {
		return model.GraphData{}, fmt.Errorf("%w: %s: %v", ErrDecode, target, err)
	}
	debug.Log("loaded %d nodes, %d links from %s", len(data.Nodes), len(data.Links), target)
	return data, nil
}

// Resolve turns src into a URL or file path. remote reports whether it must
// be fetched over http(s).
func Resolve(src, baseURL string) (target string, remote bool, err error) {
	if src == "" {
		src = DefaultSource
	}
	if isHTTP(src) {
		return src, true, nil
	}
	if baseURL == "" {
		return expandHome(src), false, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", false, fmt.Errorf("invalid source %q: %w", src, err)
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme == "file" {
		return resolved.Path, false, nil
	}
	return resolved.String(), isHTTP(resolved.String()), nil
}

// Watchable reports the local path for src, or false when src is remote.
func Watchable(src, baseURL string) (string, bool) {
	target, remote, err := Resolve(src, baseURL)
	if err != nil || remote {
		return "", false
	}
	return target, true
}

func fetchHTTP(ctx context.Context, target string, client *http.Client) ([]byte, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, target, resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetch, target, err)
	}
	return raw, nil
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
}
