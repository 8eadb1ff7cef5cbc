// Package firmware locates and validates device firmware images before they
// are handed to the device for installation.
package firmware

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/util"
)

// Options selects the firmware source. At most one of File, URL and Version
// may be set; with none set the newest release for the device's major
// version is used.
type Options struct {
	File    string
	URL     string
	Version string
}

// Resolver locates firmware images by precedence: local file, explicit URL,
// named release, latest release.
type Resolver struct {
	index *ReleaseIndex
}

// NewResolver creates a resolver backed by the given release index.
func NewResolver(index *ReleaseIndex) *Resolver {
	return &Resolver{index: index}
}

// Resolve produces the firmware image for the given options and device major
// version. Conflicting explicit sources are rejected before any network
// access.
func (r *Resolver) Resolve(ctx context.Context, opts Options, majorVersion int) (*Image, error) {
	explicit := 0
	for _, source := range []string{opts.File, opts.URL, opts.Version} {
		if source != "" {
			explicit++
		}
	}
	if explicit > 1 {
		return nil, clierrors.New(clierrors.CategoryUsage, "at most one of file, url and version may be given")
	}

	log := util.LogFromContext(ctx)

	switch {
	case opts.File != "":
		payload, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read firmware from %s", opts.File)
		}

		return &Image{Payload: payload, Source: SourceFile, Origin: opts.File}, nil

	case opts.URL != "":
		payload, err := r.index.FetchURL(ctx, opts.URL)
		if err != nil {
			return nil, err
		}

		return &Image{Payload: payload, Source: SourceURL, Origin: opts.URL}, nil

	case opts.Version != "":
		release, err := r.index.FindVersion(ctx, majorVersion, opts.Version)
		if err != nil {
			return nil, err
		}

		return r.download(ctx, release)

	default:
		release, err := r.index.Latest(ctx, majorVersion)
		if err != nil {
			return nil, err
		}

		log.Info().Str("version", release.Version).Msg("Resolved latest firmware release")

		return r.download(ctx, release)
	}
}

func (r *Resolver) download(ctx context.Context, release *Release) (*Image, error) {
	payload, err := r.index.Download(ctx, release)
	if err != nil {
		return nil, err
	}

	return &Image{
		Payload:     payload,
		Source:      SourceRelease,
		Origin:      release.Version,
		Fingerprint: release.Fingerprint,
	}, nil
}
