package firmware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
)

// ReleaseIndex fetches published firmware releases, keyed by device major
// version. The index is expected to list releases newest first.
type ReleaseIndex struct {
	baseURL string
	client  *http.Client
}

// NewReleaseIndex creates a client for the release index at baseURL.
func NewReleaseIndex(baseURL string) *ReleaseIndex {
	return &ReleaseIndex{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ListReleases returns all published releases for a device major version.
func (r *ReleaseIndex) ListReleases(ctx context.Context, majorVersion int) ([]Release, error) {
	url := fmt.Sprintf("%s/%d/releases.json", r.baseURL, majorVersion)

	body, err := r.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, errors.Wrapf(err, "failed to decode release index from %s", url)
	}

	return releases, nil
}

// FindVersion returns the release with the given version string.
func (r *ReleaseIndex) FindVersion(ctx context.Context, majorVersion int, version string) (*Release, error) {
	releases, err := r.ListReleases(ctx, majorVersion)
	if err != nil {
		return nil, err
	}

	for i := range releases {
		if releases[i].Version == version {
			return &releases[i], nil
		}
	}

	return nil, errors.Errorf("no release %q for device major version %d", version, majorVersion)
}

// Latest returns the newest release for a device major version.
func (r *ReleaseIndex) Latest(ctx context.Context, majorVersion int) (*Release, error) {
	releases, err := r.ListReleases(ctx, majorVersion)
	if err != nil {
		return nil, err
	}

	if len(releases) == 0 {
		return nil, errors.Errorf("no releases available for device major version %d", majorVersion)
	}

	return &releases[0], nil
}

// Download fetches the payload of a release.
func (r *ReleaseIndex) Download(ctx context.Context, release *Release) ([]byte, error) {
	return r.fetch(ctx, release.URL)
}

// FetchURL fetches a firmware payload from an explicit URL.
func (r *ReleaseIndex) FetchURL(ctx context.Context, url string) ([]byte, error) {
	return r.fetch(ctx, url)
}

func (r *ReleaseIndex) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", url)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to fetch %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, clierrors.New(clierrors.CategoryNodeUnavailable, "%s returned status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read response from %s", url)
	}

	return body, nil
}
