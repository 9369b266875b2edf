package installer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/repository/receipt"
	"github.com/packforge/packforge/internal/service/common"
)

// Options contains inputs for the installer entry point.
type Options struct {
	// ReceiptPath is the build receipt describing the artifact to install.
	ReceiptPath string
	// TargetPath is the deployed executable to replace.
	TargetPath string
	// ArtifactPath optionally overrides the artifact location from the receipt.
	ArtifactPath string
}

// errJobRunning indicates another build or install is holding the marker.
var errJobRunning = errors.New("another packforge job is running now")

// Run installs a built artifact over the target executable. The replacement
// is checksum-verified and rolls back automatically on failure. Running
// instances of the target are terminated first so the file is not busy.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packforge-install")

	if common.IsJobRunningNow(ctx) {
		return errJobRunning
	}

	if err := common.CreateMarker(); err != nil {
		return fmt.Errorf("create job marker: %w", err)
	}

	defer common.RemoveMarker(ctx)

	if err := install(ctx, opts); err != nil {
		logger.ErrorKV(ctx, "Install failed", "error", err)
		return err
	}

	logger.InfoKV(ctx, "Install completed successfully", "target", opts.TargetPath)

	return nil
}

// install performs the actual replacement once the marker is held.
func install(ctx context.Context, opts *Options) error {
	repo := receipt.NewFileRepository(opts.ReceiptPath)

	rec, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load receipt: %w", err)
	}

	artifactPath := rec.Artifact.Path
	if opts.ArtifactPath != "" {
		artifactPath = opts.ArtifactPath
	}

	data, err := os.ReadFile(filepath.Clean(artifactPath))
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	checksum, err := common.DecodeChecksum(rec.Artifact.Checksum)
	if err != nil {
		return fmt.Errorf("receipt checksum: %w", err)
	}

	logger.InfoKV(ctx, "Terminating running instances of the target",
		"executable", filepath.Base(opts.TargetPath))

	if err = common.TerminateProcessByName(filepath.Base(opts.TargetPath)); err != nil {
		return fmt.Errorf("terminate target processes: %w", err)
	}

	// go-update needs an existing file to replace.
	if _, err = os.Stat(opts.TargetPath); err != nil && errors.Is(err, os.ErrNotExist) {
		target, createErr := os.Create(opts.TargetPath)
		if createErr != nil {
			return fmt.Errorf("create target: %w", createErr)
		}

		if err = target.Close(); err != nil {
			return fmt.Errorf("close target: %w", err)
		}
	}

	logger.DebugKV(ctx, "Applying update", "artifact", artifactPath, "target", opts.TargetPath)

	updateOptions := goupdate.Options{
		TargetPath: opts.TargetPath,
		TargetMode: common.DefaultFileMode,
		Checksum:   checksum,
		Hash:       common.DefaultChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), updateOptions); err != nil {
		return fmt.Errorf("apply update: %w", err)
	}

	return nil
}
