package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single source download
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxSourceBytes is the largest source accepted; a longer body is an
// error rather than a truncated load
const DefaultMaxSourceBytes int64 = 256 << 20

// Fetcher downloads a source over HTTP(S) or reads it from disk
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewFetcher creates a fetcher bounded by timeout; zero uses the default
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		maxBytes: DefaultMaxSourceBytes,
	}
}

// WithMaxBytes sets the size limit; n <= 0 keeps the default
func (f *Fetcher) WithMaxBytes(n int64) *Fetcher {
	if n > 0 {
		f.maxBytes = n
	}
	return f
}

// NewFetcherWithClient uses a caller-supplied client (tests, proxies)
func NewFetcherWithClient(client *http.Client, timeout time.Duration) *Fetcher {
	f := NewFetcher(timeout)
	if client != nil {
		f.client = client
	}
	return f
}

// Fetch returns the full content behind location
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchHTTP(ctx, location)
	}
	if err == nil && u.Scheme == "file" {
		return f.readFile(ctx, u.Path)
	}
	return f.readFile(ctx, location)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty source location")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	data, err := f.readLimited(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// readLimited reads one byte past the limit to tell a full read from a cut one
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}
