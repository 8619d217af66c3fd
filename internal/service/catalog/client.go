package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/logger"
	"github.com/oshokin/ghpm/internal/version"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// StatusError is returned for a non-200 latest-release response.
type StatusError struct {
	Owner      string
	Repo       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s/%s: status %d: %v", e.Owner, e.Repo, e.StatusCode, program.ErrReleaseUnavailable)
}

func (e *StatusError) Unwrap() error {
	return program.ErrReleaseUnavailable
}

// Client reads release metadata.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero keeps the transport defaults.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		userAgent:  version.UserAgent(),
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchLatestRelease returns the latest published release of owner/repo.
// An empty asset list is a valid result.
func (c *Client) FetchLatestRelease(ctx context.Context, owner, repo string) (*program.Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest",
		c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)

	logger.DebugKV(ctx, "Fetching latest release", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w: %w", owner, repo, program.ErrReleaseUnavailable, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Owner:      owner,
			Repo:       repo,
			StatusCode: resp.StatusCode,
		}
	}

	var release program.Release
	if err = json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode %s/%s release: %w: %w", owner, repo, program.ErrReleaseUnavailable, err)
	}

	return &release, nil
}
