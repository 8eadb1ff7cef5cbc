package ethtx

import (
	"context"
	"math/big"

	"github/chapool/go-hwctl/internal/wallet/path"
)

// TxTypeUnset marks a request without an explicit transaction-type
// discriminator. 0 is a valid discriminator on some chains, so absence needs
// its own sentinel.
const TxTypeUnset = -1

// Request describes an ethereum-style transaction to assemble and sign.
// Nonce, GasPrice and GasLimit may be left unset (nil / NonceUnset) and are
// then resolved against a remote node.
type Request struct {
	Path    path.DerivationPath
	ChainID *big.Int
	TxType  int

	// Nonce is the transaction nonce; negative means unresolved.
	Nonce    int64
	GasPrice *big.Int
	GasLimit *big.Int

	// To is the destination address in hex, optionally 0x-prefixed.
	// Empty means contract creation.
	To    string
	Value *big.Int
	Data  []byte

	// Node is the host:port of the chain node used for resolution and
	// publishing.
	Node string
	// Publish submits the raw transaction after signing.
	Publish bool
}

// Signature is the tuple returned by the device for an ethereum signing call.
type Signature struct {
	V uint64
	R []byte
	S []byte
}

// Signer executes ethereum device calls needed during assembly.
type Signer interface {
	// EthereumAddress derives the address for a path on-device.
	EthereumAddress(ctx context.Context, p path.DerivationPath, display bool) (string, error)
	// SignEthereumTx signs the fully resolved request on-device.
	SignEthereumTx(ctx context.Context, req *Request) (*Signature, error)
}

// Result reports the outcome of an assembled (and optionally published)
// transaction.
type Result struct {
	// RawTx is the broadcast-ready encoding of the signed transaction.
	RawTx []byte
	// TxID is set when the transaction was published.
	TxID string
	// Published reports whether the transaction was submitted to the node.
	Published bool
}
