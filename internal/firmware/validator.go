package firmware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/util"
)

// Recognized 4-byte header magics. Some distribution channels deliver the
// whole image hex-encoded, in which case the first 8 bytes are the ASCII hex
// text of one of these markers and the payload is decoded first.
var headerMagics = [][]byte{
	[]byte("TRZR"),
	[]byte("TRZV"),
}

// fingerprintOffset is where the fingerprinted region starts; the header
// before it is rewritten during installation and excluded from the hash.
const fingerprintOffset = 256

// fingerprintedMajorVersion is the only device family with a defined
// firmware fingerprint.
const fingerprintedMajorVersion = 1

// Normalize hex-decodes a hex-delivered payload and verifies the header
// magic. It returns the binary payload ready for fingerprinting and upload.
func Normalize(payload []byte) ([]byte, error) {
	for _, magic := range headerMagics {
		hexMagic := []byte(hex.EncodeToString(magic))
		if len(payload) >= len(hexMagic) && bytes.EqualFold(payload[:len(hexMagic)], hexMagic) {
			decoded := make([]byte, hex.DecodedLen(len(payload)))
			if _, err := hex.Decode(decoded, payload); err != nil {
				return nil, clierrors.New(clierrors.CategoryFirmwareHeader, "firmware image is not valid hex despite a hex-encoded header")
			}
			payload = decoded
			break
		}
	}

	for _, magic := range headerMagics {
		if len(payload) >= len(magic) && bytes.Equal(payload[:len(magic)], magic) {
			return payload, nil
		}
	}

	return nil, clierrors.New(clierrors.CategoryFirmwareHeader, "firmware image does not start with a recognized magic marker")
}

// Fingerprint computes the firmware fingerprint: the hash of the payload
// beyond the rewritable header.
func Fingerprint(payload []byte) string {
	if len(payload) <= fingerprintOffset {
		return ""
	}

	digest := sha256.Sum256(payload[fingerprintOffset:])

	return hex.EncodeToString(digest[:])
}

// CheckFingerprint verifies the payload fingerprint against the expected
// value. Fingerprints are only defined for the oldest device family; for
// newer families a warning is logged and the check is skipped. An empty
// expected value skips the comparison but still reports the computed hash.
func CheckFingerprint(ctx context.Context, payload []byte, majorVersion int, expected string) error {
	log := util.LogFromContext(ctx)

	if majorVersion != fingerprintedMajorVersion {
		log.Warn().
			Int("major_version", majorVersion).
			Msg("Firmware fingerprint checking is unsupported for this device family")
		return nil
	}

	computed := Fingerprint(payload)
	log.Info().Str("fingerprint", computed).Msg("Computed firmware fingerprint")

	if expected == "" {
		log.Warn().Msg("No expected fingerprint available, skipping comparison")
		return nil
	}

	if computed != expected {
		return clierrors.New(clierrors.CategoryFingerprintMismatch,
			"firmware fingerprint %s does not match expected %s", computed, expected)
	}

	return nil
}
