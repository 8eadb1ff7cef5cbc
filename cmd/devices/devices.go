package devices

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/render"
	"github/chapool/go-hwctl/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("device",
		newList(),
		newPing(),
	)
}

func newList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible device transports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := command.ConfigFromFlags(cmd)

			// enumeration does not acquire a session, devices stay available
			bridge := device.NewBridge(cfg.BridgeURL, device.NewTerminalPrompter())

			transports, err := bridge.Enumerate(cmd.Context())
			if err != nil {
				return err
			}

			return render.Render(cmd.OutOrStdout(), transports, command.JSONOutput(cmd))
		},
	}
}

func newPing() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Round-trip a message through the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := command.ConfigFromFlags(cmd)

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				features, err := session.Features(ctx)
				if err != nil {
					return err
				}

				echoed, err := session.Ping(ctx, message)
				if err != nil {
					return err
				}

				result := struct {
					Label   string `json:"label"`
					Model   string `json:"model"`
					Message string `json:"message"`
				}{features.Label, features.Model, echoed}

				return render.Render(cmd.OutOrStdout(), result, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "pong", "message to echo")

	return cmd
}
