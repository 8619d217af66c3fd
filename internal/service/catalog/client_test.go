package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/ghpm/internal/domain/program"
)

// TestNewClient_Options verifies defaults and option overrides.
func TestNewClient_Options(t *testing.T) {
	t.Parallel()

	c := NewClient()
	require.Equal(t, DefaultBaseURL, c.baseURL)
	require.Zero(t, c.httpClient.Timeout)

	custom := &http.Client{}
	c = NewClient(WithHTTPClient(custom), WithBaseURL("https://ghe.local/api/v3/"), WithTimeout(time.Second))
	require.Same(t, custom, c.httpClient)
	require.Equal(t, "https://ghe.local/api/v3", c.baseURL)
	require.Equal(t, time.Second, custom.Timeout)
}

// TestFetchLatestRelease decodes assets in platform order.
func TestFetchLatestRelease(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/a/b/releases/latest", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "ghpm/")
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tag_name": "v1.0.0",
			"assets": [
				{"name": "app_1.0.0_amd64.deb", "browser_download_url": "https://dl/app_1.0.0_amd64.deb", "size": 10},
				{"name": "app_1.0.0_arm64.deb", "browser_download_url": "https://dl/app_1.0.0_arm64.deb"}
			]
		}`))
	}))
	defer server.Close()

	release, err := NewClient(WithBaseURL(server.URL)).FetchLatestRelease(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Equal(t, "v1.0.0", release.TagName)
	require.Len(t, release.Assets, 2)
	require.Equal(t, "app_1.0.0_amd64.deb", release.Assets[0].Name)
	require.Equal(t, "https://dl/app_1.0.0_amd64.deb", release.Assets[0].DownloadURL)
	require.EqualValues(t, 10, release.Assets[0].Size)
}

// TestFetchLatestRelease_EmptyAssets treats an empty asset list as valid.
func TestFetchLatestRelease_EmptyAssets(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v2", "assets": []}`))
	}))
	defer server.Close()

	release, err := NewClient(WithBaseURL(server.URL)).FetchLatestRelease(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Empty(t, release.Assets)
}

// TestFetchLatestRelease_NotFound reports a StatusError carrying owner, repo and status.
func TestFetchLatestRelease_NotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).FetchLatestRelease(context.Background(), "a", "b")
	require.ErrorIs(t, err, program.ErrReleaseUnavailable)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, "a", statusErr.Owner)
	require.Equal(t, "b", statusErr.Repo)
	require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

// TestFetchLatestRelease_BadBody reports undecodable payloads as unavailable.
func TestFetchLatestRelease_BadBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient(WithBaseURL(server.URL)).FetchLatestRelease(context.Background(), "a", "b")
	require.ErrorIs(t, err, program.ErrReleaseUnavailable)
}
