package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/repository/receipt"
	"github.com/packforge/packforge/internal/service/builder"
	"github.com/packforge/packforge/internal/service/verifier"
)

// fakeBundlerScript mimics an external bundler: it parses the --dist and
// --name arguments and writes a placeholder executable there.
const fakeBundlerScript = `#!/bin/sh
dist=""
name=""
while [ $# -gt 0 ]; do
	case "$1" in
	--dist) dist="$2"; shift 2 ;;
	--name) name="$2"; shift 2 ;;
	*) shift ;;
	esac
done
printf 'artifact-bytes' > "$dist/$name"
`

// failingBundlerScript exits without producing anything.
const failingBundlerScript = `#!/bin/sh
echo "bundler exploded" >&2
exit 1
`

// setupWorkspace populates a temporary directory with a runnable entry
// script, assets, a module tree, tool settings and a manifest, then makes it
// the working directory. It returns the settings and manifest paths.
func setupWorkspace(t *testing.T, bundlerScript string) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake bundler requires a POSIX shell")
	}

	dir := t.TempDir()
	chdir(t, dir)

	// Entry script with the executable bit set.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "launcher"), []byte("#!/bin/sh\n"), 0o755))

	// Auxiliary data.
	assetsDir := filepath.Join(dir, "assets")
	require.NoError(t, os.Mkdir(assetsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "logo.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "junk.tmp"), []byte("junk"), 0o644))

	// Forced modules.
	modulesDir := filepath.Join(dir, "modules")
	require.NoError(t, os.MkdirAll(filepath.Join(modulesDir, "charts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modulesDir, "feeds.mod"), []byte("x"), 0o644))

	// Fake bundler.
	bundlerPath := filepath.Join(dir, "fake-bundler")
	require.NoError(t, os.WriteFile(bundlerPath, []byte(bundlerScript), 0o755))

	// Tool settings.
	settingsPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		Bundler:     bundlerPath,
		DistDir:     "dist",
		ModulePaths: []string{modulesDir},
		Timeout:     time.Minute,
	}
	require.NoError(t, config.Save(settingsPath, cfg))

	// Packaging manifest.
	manifestPath := filepath.Join(dir, "dashboard.yaml")
	manifestContents := []byte(`
entry_script: launcher
output_name: dashboard
windowed: true
one_file: true
compress: true
auxiliary_data:
  - source: assets/*
    dest: assets
    exclude: ["*.tmp"]
forced_modules:
  - charts
  - feeds
`)
	require.NoError(t, os.WriteFile(manifestPath, manifestContents, 0o600))

	return settingsPath, manifestPath
}

// TestBuild_ProducesArtifactAndReceipt runs the full pipeline against the
// fake bundler and checks the artifact, the receipt and its recorded inputs.
func TestBuild_ProducesArtifactAndReceipt(t *testing.T) {
	settingsPath, manifestPath := setupWorkspace(t, fakeBundlerScript)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	options := &builder.Options{
		ConfigPath:   settingsPath,
		ManifestPath: manifestPath,
	}

	artifactPath, err := builder.Run(ctx, options)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("dist", "dashboard"), artifactPath)

	contents, err := os.ReadFile(artifactPath)
	require.NoError(t, err)
	require.Equal(t, []byte("artifact-bytes"), contents)

	repo := receipt.NewFileRepository(filepath.Join("dist", receipt.Filename("dashboard")))

	rec, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "dashboard", rec.OutputName)
	require.True(t, rec.Windowed)
	require.True(t, rec.OneFile)
	require.True(t, rec.Compress)
	require.Equal(t, []string{"charts", "feeds"}, rec.Modules)
	require.Contains(t, rec.Files, "assets/logo.png")
	require.NotContains(t, rec.Files, "assets/junk.tmp")
	require.NotEmpty(t, rec.Files["assets/logo.png"].Source)
	require.NotEmpty(t, rec.Files["assets/logo.png"].Checksum)
	require.NotEmpty(t, rec.Artifact.Checksum)
	require.NotNil(t, rec.BuiltBy)

	// A fresh build verifies cleanly, artifact and auxiliary sources alike.
	receiptPath := filepath.Join("dist", receipt.Filename("dashboard"))
	require.NoError(t, verifier.Run(ctx, &verifier.Options{ReceiptPath: receiptPath}))

	// Tampering with an auxiliary source after the build fails verification.
	require.NoError(t, os.WriteFile(rec.Files["assets/logo.png"].Source, []byte("repainted"), 0o644))
	require.Error(t, verifier.Run(ctx, &verifier.Options{ReceiptPath: receiptPath}))
}

// TestBuild_ReceiptMetadataIsDeterministic rebuilds unchanged inputs and
// expects identical receipt metadata.
func TestBuild_ReceiptMetadataIsDeterministic(t *testing.T) {
	settingsPath, manifestPath := setupWorkspace(t, fakeBundlerScript)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	options := &builder.Options{
		ConfigPath:   settingsPath,
		ManifestPath: manifestPath,
	}

	_, err := builder.Run(ctx, options)
	require.NoError(t, err)

	repo := receipt.NewFileRepository(filepath.Join("dist", receipt.Filename("dashboard")))

	first, err := repo.Load(ctx)
	require.NoError(t, err)

	_, err = builder.Run(ctx, options)
	require.NoError(t, err)

	second, err := repo.Load(ctx)
	require.NoError(t, err)
	require.True(t, first.MetadataEqual(second))
}

// TestBuild_FailureKinds checks every fatal failure class surfaces the
// matching typed error and leaves no receipt behind.
func TestBuild_FailureKinds(t *testing.T) {
	settingsPath, manifestPath := setupWorkspace(t, fakeBundlerScript)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	options := &builder.Options{
		ConfigPath:   settingsPath,
		ManifestPath: manifestPath,
	}

	// Missing entry script.
	require.NoError(t, os.Rename("launcher", "launcher.bak"))

	_, err := builder.Run(ctx, options)
	require.Equal(t, builder.KindMissingEntryScript, builder.KindOf(err))
	require.NoError(t, os.Rename("launcher.bak", "launcher"))

	// Missing auxiliary data.
	require.NoError(t, os.Rename("assets", "assets.bak"))

	_, err = builder.Run(ctx, options)
	require.Equal(t, builder.KindMissingAsset, builder.KindOf(err))
	require.NoError(t, os.Rename("assets.bak", "assets"))

	// Unresolvable forced module. The disabled name must not share the
	// module stem, otherwise the resolver still finds it.
	require.NoError(t, os.Rename(filepath.Join("modules", "charts"), filepath.Join("modules", "disabled-charts")))

	_, err = builder.Run(ctx, options)
	require.Equal(t, builder.KindModuleResolutionFailed, builder.KindOf(err))
	require.NoError(t, os.Rename(filepath.Join("modules", "disabled-charts"), filepath.Join("modules", "charts")))

	// No receipt was written by any failed attempt.
	_, err = os.Stat(filepath.Join("dist", receipt.Filename("dashboard")))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestBuild_BundlerFailure maps a crashing bundler to the output failure kind.
func TestBuild_BundlerFailure(t *testing.T) {
	settingsPath, manifestPath := setupWorkspace(t, failingBundlerScript)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	options := &builder.Options{
		ConfigPath:   settingsPath,
		ManifestPath: manifestPath,
	}

	_, err := builder.Run(ctx, options)
	require.Error(t, err)
	require.Equal(t, builder.KindOutputWriteFailed, builder.KindOf(err))
}
