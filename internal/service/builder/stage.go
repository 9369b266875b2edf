package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/manifest"
)

// stagedFilePermissions is used for copies placed in the scratch directory.
const stagedFilePermissions = 0o644

// stageAssets copies every resolved auxiliary data file into the scratch
// directory, preserving the declared bundle layout.
func stageAssets(ctx context.Context, scratchDir string, staged []manifest.StagedFile) error {
	for _, file := range staged {
		target := filepath.Join(scratchDir, filepath.FromSlash(file.Dest))

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create staging directory: %w", err)
		}

		if err := copyFile(file.Source, target); err != nil {
			return fmt.Errorf("stage %s: %w", file.Dest, err)
		}

		logger.DebugKV(ctx, "Staged auxiliary data", "source", file.Source, "dest", file.Dest)
	}

	return nil
}

// copyFile copies source to target, truncating any previous content.
func copyFile(source, target string) error {
	in, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stagedFilePermissions)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}
