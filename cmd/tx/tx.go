package tx

import (
	"context"
	"encoding/hex"

	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/render"
	"github/chapool/go-hwctl/internal/util/command"
	"github/chapool/go-hwctl/internal/wallet/chains"
	"github/chapool/go-hwctl/internal/wallet/txbuild"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("tx",
		newChains(),
		newSign(),
	)
}

func newChains() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List the chains known to the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := command.ConfigFromFlags(cmd)

			registry, err := chains.NewRegistry(cfg.ChainRegistryFile)
			if err != nil {
				return err
			}

			return render.Render(cmd.OutOrStdout(), registry.Names(), command.JSONOutput(cmd))
		},
	}
}

type signResult struct {
	Signatures   []string `json:"signatures"`
	SerializedTx string   `json:"serialized_tx"`
}

func newSign() *cobra.Command {
	var (
		chainName string
		version   uint32
		lockTime  uint32
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Interactively assemble and sign a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := command.ConfigFromFlags(cmd)

			registry, err := chains.NewRegistry(cfg.ChainRegistryFile)
			if err != nil {
				return err
			}

			// the chain must resolve before any prompting starts
			chain, err := registry.Lookup(chainName)
			if err != nil {
				return err
			}

			var source chains.DataSource
			if chain.Bip115 {
				source = chains.NewInsightClient(chain)
			}

			builder := txbuild.NewBuilder(chain, source, cmd.InOrStdin(), cmd.ErrOrStderr())

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				req, err := builder.Build(ctx, version, lockTime)
				if err != nil {
					return err
				}

				signed, err := session.SignTx(ctx, req)
				if err != nil {
					return err
				}

				result := signResult{SerializedTx: hex.EncodeToString(signed.SerializedTx)}
				for _, signature := range signed.Signatures {
					result.Signatures = append(result.Signatures, hex.EncodeToString(signature))
				}

				return render.Render(cmd.OutOrStdout(), result, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&chainName, "chain", "c", "Bitcoin", "chain name")
	cmd.Flags().Uint32Var(&version, "version", 1, "transaction version")
	cmd.Flags().Uint32Var(&lockTime, "locktime", 0, "transaction lock time")

	return cmd
}
