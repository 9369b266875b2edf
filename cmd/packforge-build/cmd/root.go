package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/service/builder"
	"github.com/packforge/packforge/internal/version"
)

var (
	// configPath to the tool settings YAML file.
	configPath string
	// distDir optionally overrides the output directory from settings.
	distDir string
	// logLevel sets the verbosity of the build log.
	logLevel string

	// rootCmd represents the base command for building an artifact from a manifest.
	rootCmd = &cobra.Command{
		Use:   "packforge-build [manifest]",
		Short: "Build a standalone executable from a packaging manifest",
		Long: `Builds a standalone executable by driving the external bundler configured
in the tool settings.

The manifest declares the entry script to launch, auxiliary data files to
embed, modules to force-include, and executable metadata (name, windowed
mode, one-file mode, compression). Manifests may be written in YAML or TOML.
A build receipt with input and artifact checksums is written next to the
produced executable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &builder.Options{
				ConfigPath:   configPath,
				ManifestPath: args[0],
				DistDir:      distDir,
			}

			_, err := builder.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the packforge-build CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to tool settings file")
	rootCmd.Flags().StringVarP(&distDir, "dist", "d", "", "output directory override")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}
