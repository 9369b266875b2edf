// Package manifest defines the declarative packaging manifest consumed by a
// build: the entry script to launch, auxiliary data files to embed, modules
// to force-include, and executable metadata (name, windowed, one-file,
// compression).
//
// Manifests are loaded from YAML or TOML, validated statically, and expanded
// against the filesystem only inside the builder. A manifest is constructed
// once per build and never mutated at runtime.
package manifest
