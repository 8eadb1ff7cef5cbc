package txbuild

import (
	"context"

	"github/chapool/go-hwctl/internal/wallet/path"
)

// DefaultSequence is the default input sequence number. It sits below the
// final-sequence threshold so replace-by-fee stays opted in.
const DefaultSequence uint32 = 0xFFFFFFFD

// TxInput is one fully specified transaction input.
type TxInput struct {
	Path       path.DerivationPath
	PrevHash   []byte
	PrevIndex  uint32
	Amount     uint64
	Sequence   uint32
	ScriptType path.ScriptType

	// BlockHash/BlockHeight carry the consensus-binding data of the block
	// that recorded the previous output. Set only on bip115 chains; the
	// hash is in device byte order.
	BlockHash   []byte
	BlockHeight uint32
}

// TxOutput is one fully specified transaction output. Exactly one of
// Address and Path is set; Path marks a change output.
type TxOutput struct {
	Address    string
	Path       path.DerivationPath
	Amount     uint64
	ScriptType path.ScriptType

	// BlockHash/BlockHeight carry the shared consensus-binding anchor on
	// bip115 chains, in device byte order.
	BlockHash   []byte
	BlockHeight uint32
}

// SignRequest is the complete signing request handed to the device session.
type SignRequest struct {
	Coin     string
	Inputs   []TxInput
	Outputs  []TxOutput
	Version  uint32
	LockTime uint32
}

// SignResult is the device's answer to a SignRequest.
type SignResult struct {
	// Signatures holds one signature per input, in input order.
	Signatures [][]byte
	// SerializedTx is the broadcast-ready serialized transaction.
	SerializedTx []byte
}

// TxSigner executes a signing request on the device.
type TxSigner interface {
	SignTx(ctx context.Context, req *SignRequest) (*SignResult, error)
}
