// Package build contains core domain types for build results.
//
// It defines Actor (who produced the artifact), Artifact (the executable and
// its checksum) and Receipt (the full record of a completed build) with Clone
// helpers to avoid leaking internal references.
package build
