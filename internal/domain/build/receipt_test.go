package build

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReceiptClone ensures cloned receipts do not share mutable state.
func TestReceiptClone(t *testing.T) {
	t.Parallel()

	original := &Receipt{
		ToolVersion: "0.1.0",
		OutputName:  "app",
		Modules:     []string{"charts"},
		Files:       map[string]FileRecord{"assets/logo.png": {Source: "assets/logo.png", Checksum: "abc"}},
		BuiltBy:     &Actor{Hostname: "host", Username: "user"},
	}

	cloned := original.Clone()
	require.Equal(t, original, cloned)

	cloned.Modules[0] = "feeds"
	cloned.Files["assets/logo.png"] = FileRecord{Source: "assets/logo.png", Checksum: "xyz"}
	cloned.BuiltBy.Username = "other"

	require.Equal(t, "charts", original.Modules[0])
	require.Equal(t, "abc", original.Files["assets/logo.png"].Checksum)
	require.Equal(t, "user", original.BuiltBy.Username)
}

// TestMetadataEqual verifies artifact checksums are ignored while all other
// fields participate in the comparison.
func TestMetadataEqual(t *testing.T) {
	t.Parallel()

	first := &Receipt{
		OutputName: "app",
		Windowed:   true,
		Modules:    []string{"charts", "feeds"},
		Files:      map[string]FileRecord{"x.png": {Source: "x.png", Checksum: "sum"}},
		Artifact:   Artifact{Path: "dist/app", Checksum: "one"},
	}

	second := first.Clone()
	second.Artifact.Checksum = "two"
	require.True(t, first.MetadataEqual(second))

	second.Windowed = false
	require.False(t, first.MetadataEqual(second))

	second = first.Clone()
	second.Modules = []string{"charts"}
	require.False(t, first.MetadataEqual(second))
}
