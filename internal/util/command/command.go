package command

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/config"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/util"
)

// ConfigFromFlags assembles the effective configuration for one invocation,
// applying global flag overrides on top of the environment.
func ConfigFromFlags(cmd *cobra.Command) config.Config {
	cfg := config.DefaultConfigFromEnv()

	if devicePath, err := cmd.Flags().GetString("device"); err == nil && devicePath != "" {
		cfg.DevicePath = devicePath
	}

	return cfg
}

// JSONOutput reports whether the invocation asked for JSON results.
func JSONOutput(cmd *cobra.Command) bool {
	asJSON, err := cmd.Flags().GetBool("json")

	return err == nil && asJSON
}

// NewSubcommandGroup returns a command that only groups subcommands.
func NewSubcommandGroup(name string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: name,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(subcommands...)

	return cmd
}

// WithSession opens a device session for one command invocation and releases
// it afterwards. The context carries a request-scoped logger tagged with a
// fresh request id.
func WithSession(ctx context.Context, cfg config.Config, fn func(ctx context.Context, session device.Session) error) error {
	logger := log.With().Str("request_id", uuid.NewString()).Logger()
	ctx = util.WithLogger(ctx, logger)

	bridge := device.NewBridge(cfg.BridgeURL, device.NewTerminalPrompter())

	info, err := device.Find(ctx, bridge, cfg.DevicePath)
	if err != nil {
		return err
	}

	session, err := bridge.Acquire(ctx, info)
	if err != nil {
		return err
	}

	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to release device session")
		}
	}()

	return fn(ctx, session)
}
