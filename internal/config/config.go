// Package config loads and saves copynaut's INI settings: the clipping
// stack mode, the name templates and the ordered name edit rules.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"

	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/stack"
)

// ErrConfig marks malformed or unknown configuration values.
var ErrConfig = errors.New("config error")

// Section and key names of the config file.
const (
	sectionStack       = "clipping stack"
	sectionStackEdits  = "clipping name edits"
	sectionExport      = "export"
	sectionExportEdits = "export name edits"

	keyMode         = "mode"
	keyNameTemplate = "name template"
	keyDirectory    = "directory"
	keyWebPQuality  = "webp quality"
	keyJPEGQuality  = "jpeg quality"
	keyDigits       = "number digits"
)

// DefaultConfig holds the built-in settings. The user file is layered on top
// of it, key by key.
const DefaultConfig = `
[clipping stack]
mode = last-in-first-out
name template = {basename_layerpath} {where}

[clipping name edits]
00_remove_doublebracketed_expressions = ;\[\[(.+)\]\];
01_remove_trailing_spaces = / +$/

[export]
name template = {layerpath_multiple}.png
directory =
webp quality = 92
jpeg quality = 92
number digits = 2

[export name edits]
00_remove_doublebracketed_expressions = /\[\[(.+)\]\]/
01_remove_trailing_spaces = / +$/
02_slashes_to_underscore = ;/+;_
03_shellcharacters_to_underscore = ,[ !#$^&*;()[\]|]+,_
`

// StackConfig configures the clipping stack.
type StackConfig struct {
	Mode         stack.Mode
	NameTemplate string
	NameEdits    []rules.Named
}

// ExportConfig configures clipping export.
type ExportConfig struct {
	NameTemplate string
	NameEdits    []rules.Named
	// Directory is kept as written; "" means the source file's directory.
	Directory    string
	WebPQuality  int
	JPEGQuality  int
	NumberDigits int
}

// Config is an immutable snapshot of the settings.
type Config struct {
	Stack  StackConfig
	Export ExportConfig
}

// Store loads and saves the config file. The parsed config is cached until
// Reload or Save.
type Store struct {
	path   string
	logger hclog.Logger
	cached *Config
}

// DefaultPath returns <user config dir>/copynaut/config.ini.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "copynaut", "config.ini"), nil
}

// Open returns a store for the file at path. A leading ~ is expanded. The
// file does not need to exist.
func Open(path string, logger hclog.Logger) (*Store, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("%w: config path %q: %v", ErrConfig, path, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{path: expanded, logger: logger}, nil
}

// Path returns the user config file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the cached config, reading it on first use.
func (s *Store) Load() (*Config, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	return s.Reload()
}

// Reload re-reads the defaults and the user file, replacing the cache.
func (s *Store) Reload() (*Config, error) {
	f, err := ini.LoadSources(loadOptions(true), []byte(DefaultConfig), s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, s.path, err)
	}
	cfg, err := fromINI(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Debug("loaded config", "path", s.path,
		"mode", cfg.Stack.Mode.String(),
		"stack_edits", len(cfg.Stack.NameEdits),
		"export_edits", len(cfg.Export.NameEdits))
	s.cached = cfg
	return cfg, nil
}

// Save rewrites the user file from cfg and makes it the cached config.
func (s *Store) Save(cfg *Config) error {
	f, err := toINI(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := f.SaveTo(s.path); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.logger.Info("saved config", "path", s.path)
	s.cached = cfg
	return nil
}

// WriteDefaults creates the user file from the built-in defaults if it does
// not exist yet. It reports whether a file was written.
func (s *Store) WriteDefaults() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config path %s: %w", s.path, err)
	}
	s.logger.Info("creating default configuration file", "path", s.path)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(DefaultConfig[1:]), 0o600); err != nil {
		return false, fmt.Errorf("writing default config %s: %w", s.path, err)
	}
	return true, nil
}

// Parse reads a config from INI text layered over the defaults.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(loadOptions(false), []byte(DefaultConfig), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return fromINI(f)
}

func loadOptions(loose bool) ini.LoadOptions {
	return ini.LoadOptions{
		Loose:                   loose,
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
	}
}

// Render returns cfg in config file syntax.
func Render(cfg *Config) ([]byte, error) {
	f, err := toINI(cfg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
