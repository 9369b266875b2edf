// Package builder turns a packaging manifest into a standalone executable.
//
// It validates the manifest inputs on disk, stages auxiliary data, resolves
// force-included modules, drives the external bundler and writes a build
// receipt with input and artifact checksums. All failures are fatal to the
// build and carry a typed BuildError kind; a failed build leaves no receipt.
package builder
