package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TanaroSch/copynaut/internal/app"
	"github.com/TanaroSch/copynaut/internal/buffers"
	"github.com/TanaroSch/copynaut/internal/clipboard"
	"github.com/TanaroSch/copynaut/internal/config"
	"github.com/TanaroSch/copynaut/internal/logging"
	"github.com/TanaroSch/copynaut/internal/ui"
)

const version = "v0.4.0"

var (
	configPath  string
	buffersDir  string
	logLevel    string
	notify      bool
	notifyLevel string

	logger      hclog.Logger
	application *app.Application
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "copynaut",
		Short:             "Named clipping stack and templated export for image files",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("COPYNAUT_CONFIG"), "config file (default <user config dir>/copynaut/config.ini)")
	root.PersistentFlags().StringVar(&buffersDir, "buffers", os.Getenv("COPYNAUT_BUFFERS"), "named buffer directory (default <user cache dir>/copynaut/buffers)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&notify, "notify", false, "show desktop notifications")
	root.PersistentFlags().StringVar(&notifyLevel, "notify-level", "info", "lowest level shown as a notification (info, warn, error)")

	root.AddCommand(
		newExpandCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newBuffersCmd(),
		newExportCmd(),
		newQuickPasteCmd(),
		newRulesCmd(),
		newConfigCmd(),
	)
	return root
}

func setup(cmd *cobra.Command, _ []string) error {
	if logLevel == "" {
		logLevel = logging.LevelFromEnv()
	}
	logger = logging.NewLogger("copynaut", logLevel, cmd.ErrOrStderr())

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("locating config file: %w", err)
		}
		configPath = p
	}
	store, err := config.Open(configPath, logger.Named("config"))
	if err != nil {
		return err
	}

	if buffersDir == "" {
		d, err := buffers.DefaultDir()
		if err != nil {
			return fmt.Errorf("locating buffer directory: %w", err)
		}
		buffersDir = d
	}
	bufs, err := buffers.Open(buffersDir, logger.Named("buffers"))
	if err != nil {
		return err
	}

	var clip *clipboard.Manager
	if clipboard.Available() {
		clip = clipboard.NewManager(logger.Named("clipboard"))
	} else {
		logger.Debug("no clipboard utility found")
	}

	application = app.New(app.Options{
		Store:     store,
		Buffers:   bufs,
		Clipboard: clip,
		Notifier:  ui.NewNotificationManager(notify, app.AppName, ui.ParseLevel(notifyLevel), logger.Named("notify")),
		Logger:    logger,
		Out:       cmd.OutOrStdout(),
	})
	return nil
}

// skipOK turns per-item skips into a warning; they are not failures.
func skipOK(cmd *cobra.Command, err error) error {
	if err != nil && app.IsSkip(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", err)
		return nil
	}
	return err
}

func main() {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
