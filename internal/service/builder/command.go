package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/packforge/packforge/internal/config"
	domain "github.com/packforge/packforge/internal/domain/build"
	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/repository/receipt"
	"github.com/packforge/packforge/internal/service/common"
	"github.com/packforge/packforge/internal/version"
)

// Options contains inputs for the builder entry point.
type Options struct {
	// ConfigPath is the optional path to the tool settings YAML file.
	ConfigPath string
	// ManifestPath is the packaging manifest to build.
	ManifestPath string
	// DistDir optionally overrides the output directory from settings.
	DistDir string
}

// builder drives one manifest through validation, staging, bundling and
// receipt generation. It is unexported; callers should use Run, which
// encapsulates setup and validation.
type builder struct {
	// cfg holds the tool settings (bundler command, directories, timeout).
	cfg *config.Config
	// m is the validated packaging manifest.
	m *manifest.Manifest
	// scratchDir is where auxiliary data is staged before bundling.
	scratchDir string
	// ownScratch records whether the scratch directory must be removed after the run.
	ownScratch bool
}

var (
	// errJobRunning indicates another build or install is holding the marker.
	errJobRunning = errors.New("another packforge job is running now")
	// errOutputInUse indicates the declared executable is currently running.
	errOutputInUse = errors.New("output executable is currently running")
)

// Run executes the packaging workflow and returns the produced artifact path.
func Run(ctx context.Context, opts *Options) (string, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packforge-build")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load configuration: %w", err)
	}

	if opts.DistDir != "" {
		cfg.DistDir = opts.DistDir
	}

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return "", fmt.Errorf("load manifest: %w", err)
	}

	b, err := newBuilder(ctx, cfg, m)
	if err != nil {
		return "", fmt.Errorf("initialize builder: %w", err)
	}

	defer b.cleanup(ctx)

	artifactPath, err := b.run(ctx)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Build completed successfully", "artifact", artifactPath)

	return artifactPath, nil
}

// newBuilder claims the job marker and prepares the scratch directory.
func newBuilder(ctx context.Context, cfg *config.Config, m *manifest.Manifest) (*builder, error) {
	if common.IsJobRunningNow(ctx) {
		return nil, errJobRunning
	}

	if err := common.CreateMarker(); err != nil {
		return nil, fmt.Errorf("create job marker: %w", err)
	}

	b := &builder{cfg: cfg, m: m}

	if cfg.ScratchDir != "" {
		b.scratchDir = filepath.Join(cfg.ScratchDir, "packforge-stage-"+m.OutputName)

		if err := os.MkdirAll(b.scratchDir, 0o755); err != nil {
			common.RemoveMarker(ctx)

			return nil, fmt.Errorf("create scratch directory: %w", err)
		}
	} else {
		scratch, err := os.MkdirTemp("", "packforge-stage-")
		if err != nil {
			common.RemoveMarker(ctx)

			return nil, fmt.Errorf("create scratch directory: %w", err)
		}

		b.scratchDir = scratch
		b.ownScratch = true
	}

	return b, nil
}

// run executes the build pipeline:
// 1) Check inputs on disk (entry script, auxiliary data, forced modules).
// 2) Stage auxiliary data into the scratch directory.
// 3) Invoke the external bundler.
// 4) Verify the artifact landed where declared.
// 5) Write the build receipt next to the artifact.
func (b *builder) run(ctx context.Context) (string, error) {
	entry := b.m.ResolvePath(b.m.EntryScript)
	if err := checkEntryScript(entry); err != nil {
		return "", err
	}

	staged, err := b.expandAssets()
	if err != nil {
		return "", err
	}

	modules := append([]string(nil), b.m.ForcedModules...)
	sort.Strings(modules)

	searchPaths := b.moduleSearchPaths()

	resolved, err := resolveModules(searchPaths, modules)
	if err != nil {
		return "", err
	}

	for name, path := range resolved {
		logger.DebugKV(ctx, "Resolved forced module", "module", name, "path", path)
	}

	if err = stageAssets(ctx, b.scratchDir, staged); err != nil {
		return "", err
	}

	artifactPath, err := b.prepareOutput()
	if err != nil {
		return "", err
	}

	args := bundlerArgs(b.m, entry, b.cfg.DistDir, b.scratchDir, staged, modules)
	if err = b.runBundler(ctx, args); err != nil {
		return "", err
	}

	if _, err = os.Stat(artifactPath); err != nil {
		return "", &BuildError{Kind: KindOutputWriteFailed, Subject: artifactPath, Err: err}
	}

	if err = b.writeReceipt(ctx, entry, artifactPath, staged, modules); err != nil {
		return "", err
	}

	return artifactPath, nil
}

// expandAssets resolves auxiliary data on disk, mapping missing sources to
// the typed build failure.
func (b *builder) expandAssets() ([]manifest.StagedFile, error) {
	staged, err := b.m.ExpandAssets()
	if err != nil {
		var missing *manifest.MissingAssetError
		if errors.As(err, &missing) {
			return nil, &BuildError{Kind: KindMissingAsset, Subject: missing.Path, Err: err}
		}

		return nil, err
	}

	return staged, nil
}

// moduleSearchPaths merges tool-level and manifest-level search paths,
// resolving the latter against the manifest location.
func (b *builder) moduleSearchPaths() []string {
	paths := append([]string(nil), b.cfg.ModulePaths...)

	for _, dir := range b.m.ModulePaths {
		paths = append(paths, b.m.ResolvePath(dir))
	}

	return paths
}

// prepareOutput ensures the output directory exists and the declared
// executable is not currently running.
func (b *builder) prepareOutput() (string, error) {
	if err := os.MkdirAll(b.cfg.DistDir, 0o755); err != nil {
		return "", &BuildError{Kind: KindOutputWriteFailed, Subject: b.cfg.DistDir, Err: err}
	}

	artifactPath := filepath.Join(b.cfg.DistDir, b.m.OutputName+common.ExecutableExtension())

	running, err := common.IsProcessRunning(filepath.Base(artifactPath))
	if err != nil {
		return "", fmt.Errorf("check running processes: %w", err)
	}

	if running {
		return "", fmt.Errorf("%s: %w", artifactPath, errOutputInUse)
	}

	return artifactPath, nil
}

// writeReceipt hashes inputs and output and persists the build receipt
// next to the artifact.
func (b *builder) writeReceipt(ctx context.Context, entry, artifactPath string, staged []manifest.StagedFile, modules []string) error {
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	files := make(map[string]domain.FileRecord, len(staged))

	for _, file := range staged {
		checksum, err := common.GetFileChecksumString(file.Source)
		if err != nil {
			return fmt.Errorf("hash %s: %w", file.Dest, err)
		}

		files[file.Dest] = domain.FileRecord{
			Source:   file.Source,
			Checksum: checksum,
		}
	}

	artifactChecksum, err := common.GetFileChecksumString(artifactPath)
	if err != nil {
		return &BuildError{Kind: KindOutputWriteFailed, Subject: artifactPath, Err: err}
	}

	rec := &domain.Receipt{
		ToolVersion: version.Short(),
		OutputName:  b.m.OutputName,
		EntryScript: b.m.EntryScript,
		Windowed:    b.m.Windowed,
		OneFile:     b.m.OneFile,
		Compress:    b.m.Compress,
		Modules:     modules,
		Files:       files,
		Artifact: domain.Artifact{
			Path:     artifactPath,
			Checksum: artifactChecksum,
		},
		BuiltBy: actor,
	}

	repo := receipt.NewFileRepository(filepath.Join(b.cfg.DistDir, receipt.Filename(b.m.OutputName)))
	if err = repo.Save(ctx, rec); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Saved build receipt", "path", repo.Path())

	return nil
}

// cleanup releases the job marker and removes an owned scratch directory.
func (b *builder) cleanup(ctx context.Context) {
	if b.ownScratch {
		if err := os.RemoveAll(b.scratchDir); err != nil {
			logger.Warnf(ctx, "Unable to remove scratch directory: %v", err)
		}
	}

	common.RemoveMarker(ctx)
}

// checkEntryScript verifies the entry script exists, is a regular file and
// carries an executable bit on platforms that track one.
func checkEntryScript(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &BuildError{Kind: KindMissingEntryScript, Subject: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return &BuildError{Kind: KindMissingEntryScript, Subject: path, Err: errors.New("not a regular file")}
	}

	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return &BuildError{Kind: KindMissingEntryScript, Subject: path, Err: errors.New("not executable")}
	}

	return nil
}
