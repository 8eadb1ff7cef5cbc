package address

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/render"
	"github/chapool/go-hwctl/internal/util/command"
	"github/chapool/go-hwctl/internal/wallet/path"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("address",
		newGet(),
	)
}

func newGet() *cobra.Command {
	var (
		pathExpr string
		chain    string
		show     bool
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Derive an address on the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			derivationPath, err := path.Parse(pathExpr)
			if err != nil {
				return err
			}

			cfg := command.ConfigFromFlags(cmd)

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				derived, err := session.Address(ctx, chain, derivationPath, show)
				if err != nil {
					return err
				}

				return render.Render(cmd.OutOrStdout(), derived, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&pathExpr, "path", "n", "", "BIP-32 path to derive the address from")
	cmd.Flags().StringVarP(&chain, "chain", "c", "Bitcoin", "chain name")
	cmd.Flags().BoolVarP(&show, "show", "d", false, "also display the address on the device")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
