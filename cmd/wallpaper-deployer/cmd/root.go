package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/wallpaper-deployer/internal/config"
	"github.com/oshokin/wallpaper-deployer/internal/logger"
	"github.com/oshokin/wallpaper-deployer/internal/service/workflow"
	"github.com/oshokin/wallpaper-deployer/internal/version"
)

var (
	// options collects flag values for the workflow.
	options workflow.Options

	// rootCmd deploys the bundle, applies both wallpapers and cleans up.
	rootCmd = &cobra.Command{
		Use:   "wallpaper-deployer",
		Short: "Set the desktop and lock screen wallpaper from the bundled images.",
		Long: `Extracts the bundled images, the ImageGlass lock screen helper and the
.NET Desktop Runtime installer next to this executable, installs the runtime
silently, sets the desktop and lock screen wallpaper and removes every
extracted file again.

Runs without any arguments. A settings file, when present, tunes timeouts,
the working directory and the log level.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return workflow.Run(ctx, &options)
		},
	}

	// configCmd writes a settings file with every default spelled out.
	configCmd = &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a settings file with default values.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			logger.InfoKV(cmd.Context(), "Settings written", "path", path)

			return nil
		},
	}
)

// Execute runs the wallpaper-deployer CLI and exits with non-zero status on error.
func Execute() {
	defer logger.Sync()

	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "wallpaper-deployer failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"path to settings file (default "+config.DefaultConfigFilename+" next to the executable, if present)")
	flags.StringVarP(&options.WorkDir, "work-dir", "w", "", "directory to extract into (default: executable's directory)")
	flags.StringVarP(&options.LogLevel, "log-level", "l", "", "log level: debug, info, warn, error")
	flags.BoolVar(&options.SkipRuntimeInstall, "skip-runtime", false, "do not run the .NET Desktop Runtime installer")
	flags.StringVar(&options.ReportFile, "report", "", "write a YAML run report to this path")
}
