// Package download fetches remote archives into a local cache directory.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// NetworkError reports a transport-level failure (connection refused, DNS
// failure, timeout) while downloading a resource. It is distinguishable from
// server-side failures so callers can re-signal it with a description of what
// was being downloaded.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("unable to reach %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Fetcher downloads remote files. The zero value uses http.DefaultClient.
type Fetcher struct {
	Client *http.Client
}

// Fetch downloads rawURL into destDir and returns the local path of the
// downloaded file, named after the last segment of the URL path. A single
// attempt is made; nothing is retried and a partial file is not cleaned up
// on failure, so a retrying caller simply overwrites it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download URL %q: %w", rawURL, err)
	}

	dest := filepath.Join(destDir, path.Base(u.Path))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("downloading %s: unexpected status %s", rawURL, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		// A failure mid-body is still a transport failure.
		return "", &NetworkError{URL: rawURL, Err: err}
	}

	return dest, nil
}
