package builder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/manifest"
)

// TestCheckEntryScript covers the disk-level entry script preconditions.
func TestCheckEntryScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Missing file.
	err := checkEntryScript(filepath.Join(dir, "absent"))
	require.Error(t, err)
	require.Equal(t, KindMissingEntryScript, KindOf(err))

	// Directory instead of a file.
	err = checkEntryScript(dir)
	require.Equal(t, KindMissingEntryScript, KindOf(err))

	// Regular executable file.
	path := filepath.Join(dir, "launcher")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, checkEntryScript(path))

	if runtime.GOOS != "windows" {
		// Present but not executable.
		plain := filepath.Join(dir, "plain")
		require.NoError(t, os.WriteFile(plain, []byte("data"), 0o644))

		err = checkEntryScript(plain)
		require.Equal(t, KindMissingEntryScript, KindOf(err))
	}
}

// TestResolveModules exercises directory and file resolution plus the failure kind.
func TestResolveModules(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "charts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "feeds"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "feeds", "live.mod"), []byte("x"), 0o644))

	resolved, err := resolveModules([]string{root}, []string{"charts", "feeds.live"})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "charts"), resolved["charts"])
	require.Equal(t, filepath.Join(root, "feeds", "live.mod"), resolved["feeds.live"])

	_, err = resolveModules([]string{root}, []string{"ghost"})
	require.Error(t, err)
	require.Equal(t, KindModuleResolutionFailed, KindOf(err))

	var buildErr *BuildError

	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, "ghost", buildErr.Subject)
}

// TestBundlerArgs verifies manifest flags are passed through verbatim.
func TestBundlerArgs(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{
		OutputName: "dashboard",
		Windowed:   true,
		OneFile:    true,
		Compress:   true,
	}

	staged := []manifest.StagedFile{{Source: "/src/logo.png", Dest: "assets/logo.png"}}

	args := bundlerArgs(m, "/src/launcher", "dist", "/scratch", staged, []string{"charts"})

	require.Contains(t, args, "--windowed")
	require.Contains(t, args, "--onefile")
	require.Contains(t, args, "--compress")
	require.Contains(t, args, "--entry")
	require.Contains(t, args, "/src/launcher")
	require.Contains(t, args, "--module")
	require.Contains(t, args, "charts")

	// Flags are omitted when the manifest does not request them.
	m.Windowed = false
	m.OneFile = false
	m.Compress = false

	args = bundlerArgs(m, "/src/launcher", "dist", "/scratch", nil, nil)
	require.NotContains(t, args, "--windowed")
	require.NotContains(t, args, "--onefile")
	require.NotContains(t, args, "--compress")
}

// TestStageAssets checks the scratch directory mirrors the declared layout.
func TestStageAssets(t *testing.T) {
	t.Parallel()

	sourceDir := t.TempDir()
	scratch := t.TempDir()

	source := filepath.Join(sourceDir, "logo.png")
	require.NoError(t, os.WriteFile(source, []byte("png"), 0o644))

	staged := []manifest.StagedFile{{Source: source, Dest: "assets/logo.png"}}

	require.NoError(t, stageAssets(context.Background(), scratch, staged))

	contents, err := os.ReadFile(filepath.Join(scratch, "assets", "logo.png"))
	require.NoError(t, err)
	require.Equal(t, []byte("png"), contents)
}

// TestKindOf covers classification of wrapped and foreign errors.
func TestKindOf(t *testing.T) {
	t.Parallel()

	err := &BuildError{Kind: KindMissingAsset, Subject: "x.png"}
	require.Equal(t, KindMissingAsset, KindOf(err))
	require.Equal(t, KindUnknown, KindOf(os.ErrNotExist))
	require.Contains(t, err.Error(), "x.png")
}
