package chains

import "context"

// Chain describes the capabilities of one supported script-based chain.
type Chain struct {
	// Name is the canonical chain name used for lookups.
	Name string `toml:"name"`
	// Slip44 is the registered coin type index.
	Slip44 uint32 `toml:"slip44"`
	// Bip115 marks chains that require anti-replay consensus binding on
	// every transaction input and output.
	Bip115 bool `toml:"bip115"`
	// APIURL is the base URL of the chain's insight-style REST API.
	APIURL string `toml:"api_url"`
	// BroadcastURL is the endpoint used to publish a signed transaction.
	BroadcastURL string `toml:"broadcast_url"`
}

// PrevOutput locates the block that recorded a previous transaction output.
type PrevOutput struct {
	// BlockHash is the recording block's hash in the data source's native
	// byte order. Callers needing device byte order must reverse it.
	BlockHash []byte
	// BlockHeight is the recording block's height.
	BlockHeight uint32
}

// DataSource reads chain state needed during request assembly.
type DataSource interface {
	// CurrentHeight returns the height of the chain tip.
	CurrentHeight(ctx context.Context) (uint32, error)
	// BlockHash returns the hash of the block at the given height, in the
	// data source's native byte order.
	BlockHash(ctx context.Context, height uint32) ([]byte, error)
	// PrevOutput returns the block hash/height pair recorded for the given
	// previous output.
	PrevOutput(ctx context.Context, txid string, index uint32) (*PrevOutput, error)
}
