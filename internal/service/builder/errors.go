package builder

import (
	"errors"
	"fmt"
)

// Kind classifies fatal build failures. Every kind halts the build
// immediately; none are retried and a failed build leaves no receipt.
type Kind uint8

const (
	// KindUnknown is the zero value for unclassified failures.
	KindUnknown Kind = iota
	// KindMissingEntryScript means the entry script does not exist or is not runnable.
	KindMissingEntryScript
	// KindMissingAsset means an auxiliary data source matched no files on disk.
	KindMissingAsset
	// KindModuleResolutionFailed means a forced module could not be located.
	KindModuleResolutionFailed
	// KindOutputWriteFailed means the bundler did not produce the declared artifact.
	KindOutputWriteFailed
)

// String returns a stable identifier for the failure kind.
func (k Kind) String() string {
	switch k {
	case KindMissingEntryScript:
		return "missing entry script"
	case KindMissingAsset:
		return "missing asset"
	case KindModuleResolutionFailed:
		return "module resolution failed"
	case KindOutputWriteFailed:
		return "output write failed"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// BuildError is the typed failure surfaced by a build.
type BuildError struct {
	// Kind classifies the failure.
	Kind Kind
	// Subject is the offending path or module name, when known.
	Subject string
	// Err is the underlying cause, may be nil.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	msg := e.Kind.String()
	if e.Subject != "" {
		msg += ": " + e.Subject
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error chain,
// returning KindUnknown for non-build errors.
func KindOf(err error) Kind {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Kind
	}

	return KindUnknown
}
