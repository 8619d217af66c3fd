package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ghpm/internal/domain/program"
)

// TestDownload stores the body under the asset name.
func TestDownload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("deb-contents"))
	}))
	defer server.Close()

	dir := t.TempDir()
	asset := &program.Asset{Name: "app_1.1.0_amd64.deb", DownloadURL: server.URL + "/download/app_1.1.0_amd64.deb"}

	path, err := NewDownloader().Download(context.Background(), asset, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app_1.1.0_amd64.deb"), path)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "deb-contents", string(contents))
}

// TestDownload_BadStatus reports ErrDownloadFailed and leaves no file.
func TestDownload_BadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	asset := &program.Asset{Name: "app.deb", DownloadURL: server.URL + "/app.deb"}

	_, err := NewDownloader().Download(context.Background(), asset, dir)
	require.ErrorIs(t, err, program.ErrDownloadFailed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestDownload_NameFromURL falls back to the URL path and strips traversal from names.
func TestDownload_NameFromURL(t *testing.T) {
	t.Parallel()

	name, err := filename(&program.Asset{DownloadURL: "https://dl/x/app_2.0_amd64.deb?raw=1"})
	require.NoError(t, err)
	require.Equal(t, "app_2.0_amd64.deb", name)

	name, err = filename(&program.Asset{Name: "../../etc/app.deb"})
	require.NoError(t, err)
	require.Equal(t, "app.deb", name)

	_, err = filename(&program.Asset{DownloadURL: "https://dl/"})
	require.ErrorIs(t, err, errNoFilename)
}

// TestNewScratchDir creates a ghpm-prefixed directory under the given root.
func TestNewScratchDir(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "nested")

	dir, err := NewScratchDir(root)
	require.NoError(t, err)
	require.Equal(t, root, filepath.Dir(dir))
	require.True(t, strings.HasPrefix(filepath.Base(dir), scratchPattern))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
