package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and default filling for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing bundler.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Blank module path.
	cfg = &Config{
		Bundler:     "bundler",
		ModulePaths: []string{"modules", ""},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay, defaults filled.
	cfg = &Config{
		Bundler: "bundler",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultDistDir, cfg.DistDir)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		Bundler:     "/usr/local/bin/bundler",
		DistDir:     "out",
		ModulePaths: []string{"modules"},
		Timeout:     time.Minute,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Bundler, loaded.Bundler)
	require.Equal(t, cfg.DistDir, loaded.DistDir)
	require.Equal(t, cfg.ModulePaths, loaded.ModulePaths)
	require.Equal(t, cfg.Timeout, loaded.Timeout)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}
