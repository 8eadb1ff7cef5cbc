package device

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/util"
)

// TransportInfo identifies one visible device transport.
type TransportInfo struct {
	Path string `json:"path"`
}

// Enumerator lists the device transports currently visible.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]TransportInfo, error)
}

// Find selects a device transport. With an empty preference exactly one
// visible device is required. A preference is first matched exactly; on a
// miss the search is retried once treating the preference as a path prefix.
// This is the only retried operation in the system.
func Find(ctx context.Context, enumerator Enumerator, preference string) (TransportInfo, error) {
	devices, err := enumerator.Enumerate(ctx)
	if err != nil {
		return TransportInfo{}, errors.Wrap(err, "failed to enumerate devices")
	}

	if preference == "" {
		switch len(devices) {
		case 0:
			return TransportInfo{}, errors.New("no device found")
		case 1:
			return devices[0], nil
		default:
			return TransportInfo{}, errors.Errorf("%d devices found, select one with --device", len(devices))
		}
	}

	for _, info := range devices {
		if info.Path == preference {
			return info, nil
		}
	}

	util.LogFromContext(ctx).Debug().
		Str("device", preference).
		Msg("No exact transport match, retrying with prefix search")

	var matches []TransportInfo
	for _, info := range devices {
		if strings.HasPrefix(info.Path, preference) {
			matches = append(matches, info)
		}
	}

	switch len(matches) {
	case 0:
		return TransportInfo{}, errors.Errorf("no device found at %q", preference)
	case 1:
		return matches[0], nil
	default:
		return TransportInfo{}, errors.Errorf("%d devices match prefix %q", len(matches), preference)
	}
}
