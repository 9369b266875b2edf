package build

import "maps"

// Actor identifies who produced an artifact.
type Actor struct {
	// Hostname is the machine name where the build ran.
	Hostname string
	// Username is the system user who ran the build.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Artifact describes the executable produced by a build.
type Artifact struct {
	// Path is the filesystem location of the produced executable.
	Path string
	// Checksum is the base64-encoded SHA-512 hash of the executable.
	// Repeated builds of identical inputs may produce different checksums
	// when the bundler embeds timestamps; this is a known non-determinism.
	Checksum string
}

// FileRecord describes one auxiliary data file that went into a build.
type FileRecord struct {
	// Source is the filesystem location the file was staged from.
	Source string
	// Checksum is the base64-encoded SHA-512 hash of the source file.
	Checksum string
}

// Receipt records the inputs and output of a completed build.
// All fields except Artifact.Checksum are deterministic for unchanged inputs.
type Receipt struct {
	// ToolVersion is the packforge version that produced the artifact.
	ToolVersion string
	// OutputName is the declared name of the executable.
	OutputName string
	// EntryScript is the program the artifact launches.
	EntryScript string
	// Windowed indicates the artifact runs without a console window.
	Windowed bool
	// OneFile indicates the artifact is a single self-contained file.
	OneFile bool
	// Compress indicates the bundler compressed the artifact.
	Compress bool
	// Modules lists the force-included modules, sorted.
	Modules []string
	// Files maps auxiliary data destinations to their source locations
	// and checksums.
	Files map[string]FileRecord
	// Artifact describes the produced executable.
	Artifact Artifact
	// BuiltBy records who ran the build.
	BuiltBy *Actor
}

// Clone returns a copy of the receipt to avoid leaking internal references.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Modules = append([]string(nil), r.Modules...)
	cloned.Files = maps.Clone(r.Files)
	cloned.BuiltBy = r.BuiltBy.Clone()

	return &cloned
}

// MetadataEqual reports whether two receipts describe the same build inputs
// and declared output. Artifact checksums are excluded from the comparison
// because bundlers may embed timestamps into otherwise identical binaries.
func (r *Receipt) MetadataEqual(other *Receipt) bool {
	if r == nil || other == nil {
		return r == other
	}

	if r.ToolVersion != other.ToolVersion ||
		r.OutputName != other.OutputName ||
		r.EntryScript != other.EntryScript ||
		r.Windowed != other.Windowed ||
		r.OneFile != other.OneFile ||
		r.Compress != other.Compress ||
		r.Artifact.Path != other.Artifact.Path {
		return false
	}

	if len(r.Modules) != len(other.Modules) {
		return false
	}

	for i, m := range r.Modules {
		if other.Modules[i] != m {
			return false
		}
	}

	return maps.Equal(r.Files, other.Files)
}
