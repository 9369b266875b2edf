// Package installer deploys a built artifact over an existing executable.
//
// The replacement is driven by the build receipt: the artifact is read from
// the recorded location, its checksum verified during apply, and the previous
// binary restored automatically if the replacement fails. The shared job
// marker keeps installs from interleaving with builds.
package installer
