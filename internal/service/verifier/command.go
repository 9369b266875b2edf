package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	domain "github.com/packforge/packforge/internal/domain/build"
	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/repository/receipt"
	"github.com/packforge/packforge/internal/service/common"
)

// Options contains inputs for the verifier entry point.
type Options struct {
	// ReceiptPath is the build receipt to verify an artifact against.
	ReceiptPath string
	// ArtifactPath optionally overrides the artifact location from the receipt.
	ArtifactPath string
	// ManifestPath switches the verifier to manifest mode: the file is
	// validated and its inputs checked on disk, without building anything.
	ManifestPath string
}

var (
	// errChecksumMismatch indicates the artifact differs from the receipt.
	errChecksumMismatch = errors.New("artifact checksum mismatch")
	// errNothingToVerify is returned when neither a receipt nor a manifest is given.
	errNothingToVerify = errors.New("either a receipt or a manifest must be provided")
)

// Run verifies a built artifact against its receipt, or, in manifest mode,
// checks a manifest and its inputs without building.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packforge-verify")

	if opts.ManifestPath != "" {
		return verifyManifest(ctx, opts.ManifestPath)
	}

	if opts.ReceiptPath == "" {
		return errNothingToVerify
	}

	return verifyArtifact(ctx, opts.ReceiptPath, opts.ArtifactPath)
}

// verifyArtifact recomputes the artifact and auxiliary data checksums and
// compares them with the receipt.
func verifyArtifact(ctx context.Context, receiptPath, artifactOverride string) error {
	repo := receipt.NewFileRepository(receiptPath)

	rec, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load receipt: %w", err)
	}

	artifactPath := rec.Artifact.Path
	if artifactOverride != "" {
		artifactPath = artifactOverride
	}

	expected, err := common.DecodeChecksum(rec.Artifact.Checksum)
	if err != nil {
		return fmt.Errorf("receipt checksum: %w", err)
	}

	actual, err := common.GetFileChecksum(artifactPath)
	if err != nil {
		return fmt.Errorf("hash artifact: %w", err)
	}

	if !bytes.Equal(expected, actual) {
		return fmt.Errorf("%s: %w", artifactPath, errChecksumMismatch)
	}

	if err = verifyFiles(ctx, rec); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Artifact matches receipt",
		"artifact", artifactPath, "output_name", rec.OutputName, "tool_version", rec.ToolVersion)

	return nil
}

// verifyFiles re-hashes the auxiliary sources recorded in the receipt and
// reports every destination whose source changed since the build. Sources
// that no longer exist are skipped with a warning.
func verifyFiles(ctx context.Context, rec *domain.Receipt) error {
	dests := make([]string, 0, len(rec.Files))
	for dest := range rec.Files {
		dests = append(dests, dest)
	}

	sort.Strings(dests)

	var mismatched []string

	for _, dest := range dests {
		record := rec.Files[dest]

		expected, err := common.DecodeChecksum(record.Checksum)
		if err != nil {
			return fmt.Errorf("receipt checksum for %s: %w", dest, err)
		}

		actual, err := common.GetFileChecksum(record.Source)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.WarnKV(ctx, "Auxiliary source no longer exists, skipping",
					"dest", dest, "source", record.Source)

				continue
			}

			return fmt.Errorf("hash %s: %w", record.Source, err)
		}

		if !bytes.Equal(expected, actual) {
			logger.WarnKV(ctx, "Auxiliary file differs from receipt",
				"dest", dest, "source", record.Source)

			mismatched = append(mismatched, dest)
		}
	}

	if len(mismatched) > 0 {
		return fmt.Errorf("auxiliary data %s: %w", strings.Join(mismatched, ", "), errChecksumMismatch)
	}

	return nil
}

// verifyManifest loads and validates a manifest, then checks that its entry
// script and auxiliary data exist on disk.
func verifyManifest(ctx context.Context, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	entry := m.ResolvePath(m.EntryScript)
	if _, err = os.Stat(entry); err != nil {
		return fmt.Errorf("entry script %s: %w", entry, err)
	}

	staged, err := m.ExpandAssets()
	if err != nil {
		return fmt.Errorf("expand auxiliary data: %w", err)
	}

	logger.InfoKV(ctx, "Manifest is valid",
		"output_name", m.OutputName,
		"auxiliary_files", len(staged),
		"forced_modules", len(m.ForcedModules))

	return nil
}
