package receipt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/packforge/packforge/internal/domain/build"
)

// TestSaveLoadRoundtrip ensures a receipt survives a write/read cycle unchanged.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewFileRepository(filepath.Join(dir, "receipt.yaml"))

	rec := &domain.Receipt{
		ToolVersion: "0.1.0",
		OutputName:  "dashboard",
		EntryScript: "launcher",
		Windowed:    true,
		OneFile:     true,
		Compress:    true,
		Modules:     []string{"charts", "feeds"},
		Files:       map[string]domain.FileRecord{"assets/logo.png": {Source: "assets/logo.png", Checksum: "c3Vt"}},
		Artifact: domain.Artifact{
			Path:     "dist/dashboard",
			Checksum: "YXJ0",
		},
		BuiltBy: &domain.Actor{Hostname: "host", Username: "user"},
	}

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, rec))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, rec, loaded)
}

// TestLoadMissing returns ErrNotFound for an absent receipt file.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}
