package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tool settings shared by the packforge binaries.
type Config struct {
	// Bundler is the external bundler executable invoked to produce the artifact.
	Bundler string `yaml:"bundler"`
	// DistDir is the directory where built artifacts and receipts are placed.
	DistDir string `yaml:"dist_dir"`
	// ScratchDir is the directory for staging auxiliary data before bundling.
	// An empty value means a fresh directory under the system temporary folder.
	ScratchDir string `yaml:"scratch_dir"`
	// ModulePaths are directories searched when resolving forced modules.
	// Manifest-level module paths are appended to these.
	ModulePaths []string `yaml:"module_paths"`
	// Timeout bounds a single bundler invocation.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for tool settings.
	DefaultConfigFilename = "packforge-settings.yaml"

	// DefaultDistDir is the default output directory for artifacts.
	DefaultDistDir = "dist"

	// DefaultTimeout is the default duration allowed for a bundler invocation.
	DefaultTimeout = 10 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBundlerRequired is returned when the bundler executable is missing.
	errBundlerRequired = errors.New("bundler executable must be provided")
	// errEmptyModulePath is returned when a module search path entry is blank.
	errEmptyModulePath = errors.New("module path must not be empty")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Bundler == "" {
		return errBundlerRequired
	}

	// Set default output directory if not specified.
	if cfg.DistDir == "" {
		cfg.DistDir = DefaultDistDir
	}

	// Set default timeout if not specified.
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	for i, dir := range cfg.ModulePaths {
		if dir == "" {
			return fmt.Errorf("module path #%d: %w", i+1, errEmptyModulePath)
		}
	}

	return nil
}
