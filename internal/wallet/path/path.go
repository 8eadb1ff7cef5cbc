// Package path parses BIP-32 derivation path expressions.
package path

import (
	"fmt"
	"strconv"
	"strings"

	"github/chapool/go-hwctl/internal/clierrors"
)

// HardenedFlag marks a path index as hardened.
const HardenedFlag = 0x80000000

// DerivationPath is the computer friendly form of a hierarchical
// deterministic derivation path. The hardened flag is folded into each index.
type DerivationPath []uint32

// Parse converts an expression like "m/44'/0'/0'/0/0" into a DerivationPath.
// The leading "m/" root marker is optional; both ' and h mark hardened indices.
func Parse(expr string) (DerivationPath, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "m" {
		return nil, clierrors.New(clierrors.CategoryMalformedInput, "empty derivation path")
	}

	expr = strings.TrimPrefix(expr, "m/")

	segments := strings.Split(expr, "/")
	indices := make(DerivationPath, 0, len(segments))

	for _, segment := range segments {
		hardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") || strings.HasSuffix(segment, "H") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		index, err := strconv.ParseUint(segment, 10, 32)
		if err != nil {
			return nil, clierrors.New(clierrors.CategoryMalformedInput, "invalid path segment %q", segment)
		}

		if index >= HardenedFlag {
			return nil, clierrors.New(clierrors.CategoryMalformedInput, "path index %d out of range", index)
		}

		if hardened {
			index |= HardenedFlag
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}

// String renders the path back into its textual form.
func (p DerivationPath) String() string {
	var b strings.Builder
	b.WriteString("m")

	for _, index := range p {
		if index >= HardenedFlag {
			fmt.Fprintf(&b, "/%d'", index-HardenedFlag)
		} else {
			fmt.Fprintf(&b, "/%d", index)
		}
	}

	return b.String()
}
