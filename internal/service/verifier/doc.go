// Package verifier checks build outputs and inputs without producing anything.
//
// In receipt mode it recomputes the artifact checksum and compares it with
// the recorded value. In manifest mode it validates the manifest and confirms
// the declared inputs exist on disk.
package verifier
