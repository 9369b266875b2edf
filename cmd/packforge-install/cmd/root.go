package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/service/installer"
	"github.com/packforge/packforge/internal/version"
)

var (
	// artifactPath optionally overrides the artifact location from the receipt.
	artifactPath string
	// logLevel sets the verbosity of the install log.
	logLevel string

	// rootCmd represents the base command for installing a built artifact.
	rootCmd = &cobra.Command{
		Use:   "packforge-install [receipt] [target]",
		Short: "Install a built artifact over a deployed executable",
		Long: `Replaces the target executable with the artifact described by the build
receipt.

The replacement is checksum-verified and rolls back automatically if it
fails. Running instances of the target executable are terminated before the
file is swapped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &installer.Options{
				ReceiptPath:  args[0],
				TargetPath:   args[1],
				ArtifactPath: artifactPath,
			}

			return installer.Run(ctx, options)
		},
	}
)

// Execute runs the packforge-install CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}
