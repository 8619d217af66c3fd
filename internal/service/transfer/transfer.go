package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/version"
)

// scratchPattern names the per-run scratch directory.
const scratchPattern = "ghpm-"

var errNoFilename = errors.New("cannot derive a filename")

// Downloader fetches artifacts over HTTP.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero keeps the transport defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Downloader) {
		if timeout > 0 {
			d.httpClient.Timeout = timeout
		}
	}
}

// NewDownloader creates a Downloader.
func NewDownloader(opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{},
		userAgent:  version.UserAgent(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// NewScratchDir creates a run-scoped scratch directory under root
// (the OS temp directory when root is empty). The caller removes it.
func NewScratchDir(root string) (string, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o750); err != nil {
			return "", fmt.Errorf("prepare scratch root: %w", err)
		}
	}

	dir, err := os.MkdirTemp(root, scratchPattern)
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}

	// Package managers treat relative names as repository packages.
	absolute, err := filepath.Abs(dir)
	if err != nil {
		_ = os.RemoveAll(dir)

		return "", fmt.Errorf("resolve scratch directory: %w", err)
	}

	return absolute, nil
}

// Download stores asset in dir and returns the local path. Any failure is
// reported as program.ErrDownloadFailed and leaves no partial file behind.
func (d *Downloader) Download(ctx context.Context, asset *program.Asset, dir string) (string, error) {
	name, err := filename(asset)
	if err != nil {
		return "", fmt.Errorf("%w: %w", program.ErrDownloadFailed, err)
	}

	destination := filepath.Join(dir, name)

	logger.InfoKV(ctx, "Downloading artifact", "url", asset.DownloadURL, "path", destination)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", program.ErrDownloadFailed, err)
	}

	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", d.userAgent)

	response, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", program.ErrDownloadFailed, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", program.ErrDownloadFailed, asset.DownloadURL, response.Status)
	}

	if err = writeFile(destination, response.Body); err != nil {
		return "", fmt.Errorf("%w: %w", program.ErrDownloadFailed, err)
	}

	return destination, nil
}

// writeFile streams body into path, removing the file on failure.
func writeFile(path string, body io.Reader) error {
	output, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err = io.Copy(output, body); err != nil {
		_ = output.Close()
		_ = os.Remove(path)

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err = output.Close(); err != nil {
		_ = os.Remove(path)

		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// filename prefers the asset name and falls back to the last URL segment.
func filename(asset *program.Asset) (string, error) {
	if name := filepath.Base(strings.TrimSpace(asset.Name)); isUsable(name) {
		return name, nil
	}

	parsed, err := url.Parse(asset.DownloadURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", asset.DownloadURL, err)
	}

	if name := path.Base(parsed.Path); isUsable(name) {
		return name, nil
	}

	return "", fmt.Errorf("%q: %w", asset.DownloadURL, errNoFilename)
}

func isUsable(name string) bool {
	return name != "" && name != "." && name != "/" && name != ".."
}
