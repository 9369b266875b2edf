package builder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/packforge/packforge/internal/logger"
	"github.com/packforge/packforge/internal/manifest"
)

// bundlerOutputTail bounds how much bundler output is attached to failures.
const bundlerOutputTail = 2048

// bundlerArgs composes the external bundler invocation from the manifest.
// Data pairs use the platform list separator between staged path and bundle
// destination, matching the convention of mainstream bundlers.
func bundlerArgs(m *manifest.Manifest, entry, distDir, scratchDir string, staged []manifest.StagedFile, modules []string) []string {
	args := []string{
		"--entry", entry,
		"--name", m.OutputName,
		"--dist", distDir,
	}

	if m.Windowed {
		args = append(args, "--windowed")
	}

	if m.OneFile {
		args = append(args, "--onefile")
	}

	if m.Compress {
		args = append(args, "--compress")
	}

	for _, name := range modules {
		args = append(args, "--module", name)
	}

	separator := string(os.PathListSeparator)

	for _, file := range staged {
		stagedPath := filepath.Join(scratchDir, filepath.FromSlash(file.Dest))
		args = append(args, "--data", stagedPath+separator+file.Dest)
	}

	return args
}

// runBundler executes the external bundler and surfaces its failure with the
// tail of its combined output attached.
func (b *builder) runBundler(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	logger.InfoKV(ctx, "Invoking bundler", "command", b.cfg.Bundler)
	logger.DebugKV(ctx, "Bundler arguments", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, b.cfg.Bundler, args...)

	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		logger.Debugf(ctx, "Bundler output:\n%s", output)
	}

	if err != nil {
		return &BuildError{
			Kind:    KindOutputWriteFailed,
			Subject: b.cfg.Bundler,
			Err:     wrapBundlerFailure(err, output),
		}
	}

	return nil
}

// wrapBundlerFailure attaches the last lines of bundler output to the exec error.
func wrapBundlerFailure(err error, output []byte) error {
	if len(output) == 0 {
		return err
	}

	tail := output
	if len(tail) > bundlerOutputTail {
		tail = tail[len(tail)-bundlerOutputTail:]
	}

	return &bundlerFailure{err: err, output: strings.TrimSpace(string(tail))}
}

// bundlerFailure carries the bundler exit error together with its output tail.
type bundlerFailure struct {
	err    error
	output string
}

// Error implements the error interface.
func (f *bundlerFailure) Error() string {
	return f.err.Error() + ": " + f.output
}

// Unwrap exposes the exec error to errors.Is/As.
func (f *bundlerFailure) Unwrap() error {
	return f.err
}
