// Package config defines tool settings used by the packforge binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the external bundler executable, output and scratch
// directories, module search paths and the bundler invocation timeout.
package config
