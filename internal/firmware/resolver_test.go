package firmware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/firmware"
)

func newReleaseTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	requests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/firmware/1/releases.json", func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprintf(w, `[
			{"version":"1.8.3","url":%q,"fingerprint":"fp-183"},
			{"version":"1.8.2","url":%q,"fingerprint":"fp-182"}
		]`, "http://"+r.Host+"/firmware/1/fw-1.8.3.bin", "http://"+r.Host+"/firmware/1/fw-1.8.2.bin")
	})
	mux.HandleFunc("/firmware/1/fw-1.8.3.bin", func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write(binaryImage("TRZR", 512))
	})
	mux.HandleFunc("/firmware/1/fw-1.8.2.bin", func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_, _ = w.Write(binaryImage("TRZR", 256))
	})

	return httptest.NewServer(mux), &requests
}

func TestResolveLocalFile(t *testing.T) {
	server, requests := newReleaseTestServer(t)
	defer server.Close()

	file := filepath.Join(t.TempDir(), "fw.bin")
	require.NoError(t, os.WriteFile(file, binaryImage("TRZR", 512), 0o600))

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	image, err := resolver.Resolve(t.Context(), firmware.Options{File: file}, 1)
	require.NoError(t, err)

	assert.Equal(t, firmware.SourceFile, image.Source)
	assert.Equal(t, file, image.Origin)
	assert.Len(t, image.Payload, 512)
	// a local file never touches the network
	assert.Equal(t, 0, *requests)
}

func TestResolveExplicitURL(t *testing.T) {
	server, _ := newReleaseTestServer(t)
	defer server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	image, err := resolver.Resolve(t.Context(), firmware.Options{URL: server.URL + "/firmware/1/fw-1.8.2.bin"}, 1)
	require.NoError(t, err)

	assert.Equal(t, firmware.SourceURL, image.Source)
	assert.Len(t, image.Payload, 256)
	assert.Empty(t, image.Fingerprint)
}

func TestResolveNamedVersion(t *testing.T) {
	server, _ := newReleaseTestServer(t)
	defer server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	image, err := resolver.Resolve(t.Context(), firmware.Options{Version: "1.8.2"}, 1)
	require.NoError(t, err)

	assert.Equal(t, firmware.SourceRelease, image.Source)
	assert.Equal(t, "1.8.2", image.Origin)
	assert.Equal(t, "fp-182", image.Fingerprint)
	assert.Len(t, image.Payload, 256)
}

func TestResolveLatest(t *testing.T) {
	server, _ := newReleaseTestServer(t)
	defer server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	image, err := resolver.Resolve(t.Context(), firmware.Options{}, 1)
	require.NoError(t, err)

	assert.Equal(t, "1.8.3", image.Origin)
	assert.Equal(t, "fp-183", image.Fingerprint)
	assert.Len(t, image.Payload, 512)
}

func TestResolveUnknownVersion(t *testing.T) {
	server, _ := newReleaseTestServer(t)
	defer server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	_, err := resolver.Resolve(t.Context(), firmware.Options{Version: "0.0.1"}, 1)
	assert.Error(t, err)
}

func TestResolveConflictingSources(t *testing.T) {
	server, requests := newReleaseTestServer(t)
	defer server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	_, err := resolver.Resolve(t.Context(), firmware.Options{File: "fw.bin", Version: "1.8.2"}, 1)
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryUsage, clierrors.CategoryOf(err))
	// the usage error is raised before any network access
	assert.Equal(t, 0, *requests)

	_, err = resolver.Resolve(t.Context(), firmware.Options{URL: "http://example.com/fw.bin", Version: "1.8.2"}, 1)
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryUsage, clierrors.CategoryOf(err))
}

func TestResolveIndexUnavailable(t *testing.T) {
	server, _ := newReleaseTestServer(t)
	server.Close()

	resolver := firmware.NewResolver(firmware.NewReleaseIndex(server.URL + "/firmware"))

	_, err := resolver.Resolve(t.Context(), firmware.Options{}, 1)
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryNodeUnavailable, clierrors.CategoryOf(err))
}
