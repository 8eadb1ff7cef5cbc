package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/cmd/address"
	"github/chapool/go-hwctl/cmd/devices"
	"github/chapool/go-hwctl/cmd/eth"
	"github/chapool/go-hwctl/cmd/firmware"
	"github/chapool/go-hwctl/cmd/tx"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "hwctl",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Drives a hardware signing device: address derivation, transaction
signing for script-based and ethereum-style chains, firmware updates.
Configured through ENV (HWCTL_*).`, config.ModuleName),
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		configureLogger(cmd)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.PersistentFlags().String("device", "", "transport path of the device to use (exact or prefix)")
	rootCmd.PersistentFlags().Bool("json", false, "render results as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	// attach the subcommands
	rootCmd.AddCommand(
		address.New(),
		devices.New(),
		eth.New(),
		firmware.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute command")
		os.Exit(clierrors.ExitCode(err))
	}
}

func configureLogger(cmd *cobra.Command) {
	cfg := config.DefaultConfigFromEnv()

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.Logger.PrettyPrintConsole {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	log.Logger = logger
}
