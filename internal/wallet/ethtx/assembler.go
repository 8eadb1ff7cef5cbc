// Package ethtx assembles ethereum-style transactions for device signing:
// denomination normalization, remote resolution of missing fields and the
// final recursive length-prefixed encoding of the signed field tuple.
package ethtx

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/util"
)

// NodeClient is the subset of a chain node used during assembly.
type NodeClient interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)
	Close()
}

// NodeDialer opens a NodeClient for a host:port endpoint.
type NodeDialer func(ctx context.Context, node string) (NodeClient, error)

// Assembler resolves, signs and encodes ethereum transactions.
type Assembler struct {
	signer Signer
	dial   NodeDialer
}

// NewAssembler creates an assembler using the default RPC node dialer.
func NewAssembler(signer Signer) *Assembler {
	return NewAssemblerWithNodeDialer(signer, dialNode)
}

// NewAssemblerWithNodeDialer creates an assembler with a custom node dialer.
func NewAssemblerWithNodeDialer(signer Signer, dial NodeDialer) *Assembler {
	return &Assembler{
		signer: signer,
		dial:   dial,
	}
}

// Assemble fills unresolved fields from the remote node where necessary,
// has the device sign the transaction and returns the raw encoding, or the
// transaction id when publishing was requested.
func (a *Assembler) Assemble(ctx context.Context, request *Request) (*Result, error) {
	// work on a copy so resolved fields never leak back to the caller
	req := *request

	toBytes, err := parseToAddress(req.To)
	if err != nil {
		return nil, err
	}

	if req.Value == nil {
		req.Value = big.NewInt(0)
	}

	needsNode := req.Nonce < 0 || req.GasPrice == nil || req.GasLimit == nil || req.Publish

	var node NodeClient
	if needsNode {
		node, err = a.dial(ctx, req.Node)
		if err != nil {
			return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to connect to node %s", req.Node)
		}
		defer node.Close()
	}

	if req.GasPrice == nil {
		gasPrice, err := node.SuggestGasPrice(ctx)
		if err != nil {
			return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to query gas price from %s", req.Node)
		}
		req.GasPrice = gasPrice
	}

	if req.Nonce < 0 || req.GasLimit == nil {
		// the sender address comes from the device, the path never
		// leaves it as key material
		from, err := a.signer.EthereumAddress(ctx, req.Path, false)
		if err != nil {
			return nil, err
		}
		fromAddress := common.HexToAddress(from)

		if req.Nonce < 0 {
			nonce, err := node.PendingNonceAt(ctx, fromAddress)
			if err != nil {
				return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to query nonce from %s", req.Node)
			}
			req.Nonce = int64(nonce)
		}

		if req.GasLimit == nil {
			msg := ethereum.CallMsg{
				From:     fromAddress,
				GasPrice: req.GasPrice,
				Value:    req.Value,
				Data:     req.Data,
			}
			if len(toBytes) > 0 {
				to := common.BytesToAddress(toBytes)
				msg.To = &to
			}

			gasLimit, err := node.EstimateGas(ctx, msg)
			if err != nil {
				return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to estimate gas via %s", req.Node)
			}
			req.GasLimit = new(big.Int).SetUint64(gasLimit)
		}
	}

	signature, err := a.signer.SignEthereumTx(ctx, &req)
	if err != nil {
		return nil, err
	}

	rawTx, err := EncodeRawTx(&req, toBytes, signature)
	if err != nil {
		return nil, err
	}

	if !req.Publish {
		return &Result{RawTx: rawTx}, nil
	}

	txID, err := node.SendRawTransaction(ctx, rawTx)
	if err != nil {
		return nil, clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "failed to publish transaction via %s", req.Node)
	}

	util.LogFromContext(ctx).Info().
		Str("txid", txID).
		Msg("Published transaction")

	return &Result{RawTx: rawTx, TxID: txID, Published: true}, nil
}

// EncodeRawTx serializes the signed field tuple into the chain's canonical
// recursive length-prefixed encoding. The type discriminator leads the tuple
// only when one was specified; it is never encoded as a null placeholder.
func EncodeRawTx(req *Request, toBytes []byte, sig *Signature) ([]byte, error) {
	fields := make([]interface{}, 0, 10)

	if req.TxType != TxTypeUnset {
		fields = append(fields, uint64(req.TxType))
	}

	fields = append(fields,
		uint64(req.Nonce),
		req.GasPrice,
		req.GasLimit,
		toBytes,
		req.Value,
		req.Data,
		sig.V,
		new(big.Int).SetBytes(sig.R),
		new(big.Int).SetBytes(sig.S),
	)

	rawTx, err := rlp.EncodeToBytes(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode raw transaction")
	}

	return rawTx, nil
}

// parseToAddress decodes a destination address, accepting an optional 0x
// prefix. An empty string denotes contract creation and yields an empty
// destination field.
func parseToAddress(to string) ([]byte, error) {
	if to == "" {
		return nil, nil
	}

	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(to), "0x"))
	if err != nil || len(decoded) != common.AddressLength {
		return nil, clierrors.New(clierrors.CategoryMalformedInput, "invalid destination address %q", to)
	}

	return decoded, nil
}

type rpcNode struct {
	rpc *rpc.Client
	eth *ethclient.Client
}

func dialNode(ctx context.Context, node string) (NodeClient, error) {
	endpoint := node
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	return &rpcNode{
		rpc: client,
		eth: ethclient.NewClient(client),
	}, nil
}

func (n *rpcNode) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return n.eth.SuggestGasPrice(ctx)
}

func (n *rpcNode) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return n.eth.EstimateGas(ctx, msg)
}

func (n *rpcNode) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return n.eth.PendingNonceAt(ctx, account)
}

func (n *rpcNode) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	var txID string
	if err := n.rpc.CallContext(ctx, &txID, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return "", err
	}

	return txID, nil
}

func (n *rpcNode) Close() {
	n.rpc.Close()
}
