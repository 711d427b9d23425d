// Package app implements the copynaut operations on top of the config
// store, the buffer list and the export pipeline.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/TanaroSch/copynaut/internal/buffers"
	"github.com/TanaroSch/copynaut/internal/clipboard"
	"github.com/TanaroSch/copynaut/internal/config"
	"github.com/TanaroSch/copynaut/internal/export"
	"github.com/TanaroSch/copynaut/internal/exportpath"
	"github.com/TanaroSch/copynaut/internal/ui"
)

// AppName is used for notifications and dialog titles.
const AppName = "Copynaut"

// Application represents the copynaut host.
type Application struct {
	store     *config.Store
	buffers   *buffers.Store
	clipboard *clipboard.Manager
	notifier  *ui.NotificationManager
	logger    hclog.Logger
	out       io.Writer
}

// Options wires an Application. Store and Buffers are required.
type Options struct {
	Store     *config.Store
	Buffers   *buffers.Store
	Clipboard *clipboard.Manager
	Notifier  *ui.NotificationManager
	Logger    hclog.Logger
	Out       io.Writer
}

// New creates an application from opts.
func New(opts Options) *Application {
	a := &Application{
		store:     opts.Store,
		buffers:   opts.Buffers,
		clipboard: opts.Clipboard,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		out:       opts.Out,
	}
	if a.logger == nil {
		a.logger = hclog.NewNullLogger()
	}
	if a.notifier == nil {
		a.notifier = ui.NewNotificationManager(false, AppName, ui.LevelInfo, a.logger)
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	return a
}

// IsSkip reports whether err only skipped one item: an unsupported file
// format or a destination that must not be overwritten.
func IsSkip(err error) bool {
	return errors.Is(err, export.ErrUnsupportedFormat) || errors.Is(err, exportpath.ErrWontOverwrite)
}

// config returns the cached config, notifying on failure.
func (a *Application) config() (*config.Config, error) {
	cfg, err := a.store.Load()
	if err != nil {
		return nil, a.fail("Configuration Error", err)
	}
	return cfg, nil
}

// fail reports err to the user and returns it.
func (a *Application) fail(title string, err error) error {
	if IsSkip(err) {
		a.notifier.Warn(title, err.Error())
	} else {
		a.notifier.Error(title, err.Error())
	}
	return err
}

// Reload drops the cached config and reads it again.
func (a *Application) Reload() error {
	cfg, err := a.store.Reload()
	if err != nil {
		return a.fail("Configuration Error", err)
	}
	a.logger.Info("configuration reloaded", "path", a.store.Path(), "mode", cfg.Stack.Mode.String())
	return nil
}

// ShowConfig writes the effective configuration.
func (a *Application) ShowConfig() error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	text, err := config.Render(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "; %s\n", a.store.Path())
	_, err = a.out.Write(text)
	return err
}

// InitConfig writes the default config file unless one exists.
func (a *Application) InitConfig() (bool, error) {
	written, err := a.store.WriteDefaults()
	if err != nil {
		return false, a.fail("Configuration Error", err)
	}
	if written {
		a.notifier.Info("Configuration Created", "Default configuration written to "+a.store.Path())
	}
	return written, nil
}

// EditConfig opens the config file in the desktop's default editor,
// creating it from the defaults first.
func (a *Application) EditConfig() error {
	if _, err := a.InitConfig(); err != nil {
		return err
	}
	if err := ui.OpenFileInDefaultApp(a.store.Path()); err != nil {
		return a.fail("Open Failed", err)
	}
	return nil
}
