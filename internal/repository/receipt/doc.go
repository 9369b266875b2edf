// Package receipt persists build receipts as YAML files.
//
// It exposes a Repository interface and a file-backed implementation used by
// the builder (to record results), the verifier and the installer (to check
// and apply artifacts).
package receipt
