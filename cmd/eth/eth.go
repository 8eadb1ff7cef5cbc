package eth

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/render"
	"github/chapool/go-hwctl/internal/util/command"
	"github/chapool/go-hwctl/internal/wallet/ethtx"
	"github/chapool/go-hwctl/internal/wallet/path"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("eth",
		newAddress(),
		newSign(),
	)
}

func newAddress() *cobra.Command {
	var (
		pathExpr string
		show     bool
	)

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive an ethereum address on the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			derivationPath, err := path.Parse(pathExpr)
			if err != nil {
				return err
			}

			cfg := command.ConfigFromFlags(cmd)

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				derived, err := session.EthereumAddress(ctx, derivationPath, show)
				if err != nil {
					return err
				}

				return render.Render(cmd.OutOrStdout(), derived, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&pathExpr, "path", "n", "", "BIP-32 path to derive the address from")
	cmd.Flags().BoolVarP(&show, "show", "d", false, "also display the address on the device")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

type signResult struct {
	RawTx     string `json:"raw_tx"`
	TxID      string `json:"txid,omitempty"`
	Published bool   `json:"published"`
}

func newSign() *cobra.Command {
	var (
		pathExpr string
		to       string
		value    string
		gasPrice string
		gasLimit int64
		nonce    int64
		data     string
		chainID  int64
		txType   int
		node     string
		publish  bool
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Assemble, sign and optionally publish an ethereum transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			derivationPath, err := path.Parse(pathExpr)
			if err != nil {
				return err
			}

			request := ethtx.Request{
				Path:    derivationPath,
				TxType:  txType,
				Nonce:   nonce,
				To:      to,
				Publish: publish,
			}

			if value != "" {
				if request.Value, err = ethtx.ParseAmount(value); err != nil {
					return err
				}
			}

			if gasPrice != "" {
				if request.GasPrice, err = ethtx.ParseAmount(gasPrice); err != nil {
					return err
				}
			}

			if gasLimit >= 0 {
				request.GasLimit = big.NewInt(gasLimit)
			}

			if chainID > 0 {
				request.ChainID = big.NewInt(chainID)
			}

			if data != "" {
				decoded, err := hex.DecodeString(strings.TrimPrefix(data, "0x"))
				if err != nil {
					return clierrors.New(clierrors.CategoryMalformedInput, "invalid transaction data %q", data)
				}
				request.Data = decoded
			}

			cfg := command.ConfigFromFlags(cmd)

			request.Node = node
			if request.Node == "" {
				request.Node = cfg.EthereumNode
			}

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				assembled, err := ethtx.NewAssembler(session).Assemble(ctx, &request)
				if err != nil {
					return err
				}

				result := signResult{
					RawTx:     hex.EncodeToString(assembled.RawTx),
					TxID:      assembled.TxID,
					Published: assembled.Published,
				}

				return render.Render(cmd.OutOrStdout(), result, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&pathExpr, "path", "n", "", "BIP-32 path of the sending account")
	cmd.Flags().StringVarP(&to, "to", "t", "", "destination address; empty creates a contract")
	cmd.Flags().StringVar(&value, "value", "", "amount to send, e.g. \"10 gwei\" (base units without a suffix)")
	cmd.Flags().StringVar(&gasPrice, "gas-price", "", "gas price, e.g. \"20 gwei\"; queried from the node when omitted")
	cmd.Flags().Int64Var(&gasLimit, "gas-limit", -1, "gas limit; estimated via the node when omitted")
	cmd.Flags().Int64Var(&nonce, "nonce", -1, "transaction nonce; queried from the node when omitted")
	cmd.Flags().StringVar(&data, "data", "", "transaction data as hex")
	cmd.Flags().Int64Var(&chainID, "chain-id", 0, "EIP-155 chain id")
	cmd.Flags().IntVar(&txType, "tx-type", ethtx.TxTypeUnset, "transaction type discriminator")
	cmd.Flags().StringVar(&node, "node", "", "host:port of the chain node")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the signed transaction via the node")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
