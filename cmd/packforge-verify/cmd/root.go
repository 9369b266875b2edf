package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/service/verifier"
	"github.com/packforge/packforge/internal/version"
)

var (
	// artifactPath optionally overrides the artifact location from the receipt.
	artifactPath string
	// manifestPath switches the verifier to manifest mode.
	manifestPath string
	// logLevel sets the verbosity of the verification log.
	logLevel string

	// errReceiptRequired is returned when no receipt argument is given in receipt mode.
	errReceiptRequired = errors.New("a receipt path is required unless --manifest is used")

	// rootCmd represents the base command for verifying artifacts and manifests.
	rootCmd = &cobra.Command{
		Use:   "packforge-verify [receipt]",
		Short: "Verify a built artifact against its receipt, or validate a manifest",
		Long: `Verifies that a built executable still matches the checksums recorded in
its build receipt.

With --manifest, no receipt is needed: the manifest is validated and its
declared inputs (entry script, auxiliary data, forced modules) are checked
on disk without building anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &verifier.Options{
				ArtifactPath: artifactPath,
				ManifestPath: manifestPath,
			}

			if len(args) > 0 {
				options.ReceiptPath = args[0]
			}

			if options.ReceiptPath == "" && options.ManifestPath == "" {
				return errReceiptRequired
			}

			return verifier.Run(ctx, options)
		},
	}
)

// Execute runs the packforge-verify CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&artifactPath, "artifact", "a", "", "artifact path override")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "validate this manifest instead of checking a receipt")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}
