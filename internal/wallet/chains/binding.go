package chains

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/util"
)

// anchorDepth is how far below the chain tip the binding anchor is picked,
// deep enough that a reorg past it is considered impossible.
const anchorDepth = 300

// Binding is a consensus-binding anchor: a block hash/height pair embedded
// into inputs and outputs so the transaction is only valid on a chain that
// shares this history. The hash is stored byte-reversed relative to the data
// source's native order, which is the order the device verifies.
type Binding struct {
	BlockHash   []byte
	BlockHeight uint32
}

// ResolveBinding picks the anchor block for a new signing request. It is
// resolved once per request and shared by every input and output that
// carries binding data.
func ResolveBinding(ctx context.Context, source DataSource) (*Binding, error) {
	height, err := source.CurrentHeight(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve chain height")
	}

	if height < anchorDepth {
		return nil, errors.Errorf("chain height %d below anchor depth %d", height, anchorDepth)
	}

	anchor := height - anchorDepth

	hash, err := source.BlockHash(ctx, anchor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve hash of anchor block %d", anchor)
	}

	util.LogFromContext(ctx).Debug().
		Uint32("height", anchor).
		Msg("Resolved consensus-binding anchor")

	return &Binding{
		BlockHash:   ReverseBytes(hash),
		BlockHeight: anchor,
	}, nil
}

// BindingForPrevOutput converts a previous-output lookup into binding data,
// reversing the hash into device byte order.
func BindingForPrevOutput(prev *PrevOutput) *Binding {
	return &Binding{
		BlockHash:   ReverseBytes(prev.BlockHash),
		BlockHeight: prev.BlockHeight,
	}
}

// ReverseBytes returns a reversed copy of b. The input is not modified.
func ReverseBytes(b []byte) []byte {
	reversed := make([]byte, len(b))
	for i, v := range b {
		reversed[len(b)-1-i] = v
	}

	return reversed
}
