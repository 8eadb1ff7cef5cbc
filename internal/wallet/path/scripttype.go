package path

import "github/chapool/go-hwctl/internal/clierrors"

// ScriptType selects the spending condition template for an input or output.
type ScriptType int

const (
	// ScriptPayToAddress is a legacy pay-to-address script.
	ScriptPayToAddress ScriptType = iota
	// ScriptPayToWitness is a native segwit script.
	ScriptPayToWitness
	// ScriptPayToP2SHWitness is a segwit script wrapped in P2SH.
	ScriptPayToP2SHWitness
)

// purposeWrappedSegwit is the BIP-49 purpose index signaling P2SH-wrapped segwit.
const purposeWrappedSegwit = 49

func (s ScriptType) String() string {
	switch s {
	case ScriptPayToWitness:
		return "segwit"
	case ScriptPayToP2SHWitness:
		return "p2shsegwit"
	default:
		return "address"
	}
}

// ParseScriptType maps an accepted keyword to its ScriptType. The mapping is
// total over {address, segwit, p2shsegwit}; anything else is rejected.
func ParseScriptType(keyword string) (ScriptType, error) {
	switch keyword {
	case "address":
		return ScriptPayToAddress, nil
	case "segwit":
		return ScriptPayToWitness, nil
	case "p2shsegwit":
		return ScriptPayToP2SHWitness, nil
	default:
		return 0, clierrors.New(clierrors.CategoryMalformedInput, "unknown script type %q", keyword)
	}
}

// DefaultScriptType infers the script type from the path's purpose index:
// paths under purpose 49' default to wrapped segwit, everything else to
// plain pay-to-address.
func DefaultScriptType(p DerivationPath) ScriptType {
	if len(p) == 0 {
		return ScriptPayToAddress
	}

	if p[0] == purposeWrappedSegwit || p[0] == purposeWrappedSegwit|HardenedFlag {
		return ScriptPayToP2SHWitness
	}

	return ScriptPayToAddress
}
