package firmware

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/firmware"
	"github/chapool/go-hwctl/internal/render"
	"github/chapool/go-hwctl/internal/util"
	"github/chapool/go-hwctl/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("firmware",
		newUpdate(),
	)
}

type updateResult struct {
	Source      string `json:"source"`
	Origin      string `json:"origin"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

func newUpdate() *cobra.Command {
	var (
		opts        firmware.Options
		fingerprint string
		skipCheck   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Install a firmware image on the device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// reject conflicting sources before touching the device or the network
			explicit := 0
			for _, source := range []string{opts.File, opts.URL, opts.Version} {
				if source != "" {
					explicit++
				}
			}
			if explicit > 1 {
				return clierrors.New(clierrors.CategoryUsage, "at most one of --file, --url and --fw-version may be given")
			}

			cfg := command.ConfigFromFlags(cmd)
			resolver := firmware.NewResolver(firmware.NewReleaseIndex(cfg.ReleasesURL))

			return command.WithSession(cmd.Context(), cfg, func(ctx context.Context, session device.Session) error {
				features, err := session.Features(ctx)
				if err != nil {
					return err
				}

				if !features.BootloaderMode {
					return clierrors.New(clierrors.CategoryDevice, "device is not in bootloader mode, reboot it with the update button held")
				}

				image, err := resolver.Resolve(ctx, opts, features.MajorVersion)
				if err != nil {
					return err
				}

				payload, err := firmware.Normalize(image.Payload)
				if err != nil {
					if !skipCheck {
						return err
					}
					util.LogFromContext(ctx).Warn().Err(err).Msg("Uploading firmware with an unrecognized header")
					payload = image.Payload
				}

				if skipCheck {
					util.LogFromContext(ctx).Warn().Msg("Skipping firmware fingerprint check")
				} else {
					expected := image.Fingerprint
					if fingerprint != "" {
						expected = fingerprint
					}

					if err := firmware.CheckFingerprint(ctx, payload, features.MajorVersion, expected); err != nil {
						return err
					}
				}

				if err := session.UploadFirmware(ctx, payload); err != nil {
					return err
				}

				result := updateResult{
					Source:      image.Source.String(),
					Origin:      image.Origin,
					Fingerprint: firmware.Fingerprint(payload),
				}

				return render.Render(cmd.OutOrStdout(), result, command.JSONOutput(cmd))
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "install a local firmware image")
	cmd.Flags().StringVarP(&opts.URL, "url", "u", "", "install a firmware image fetched from a URL")
	cmd.Flags().StringVar(&opts.Version, "fw-version", "", "install a named firmware release")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "expected firmware fingerprint, overrides the release index")
	cmd.Flags().BoolVarP(&skipCheck, "skip-check", "s", false, "skip header and fingerprint validation")

	return cmd
}
