// Package common holds helpers shared by the packforge services: actor
// detection for receipts, checksum calculation and encoding, the job marker
// that keeps build and install from interleaving, and process lookups.
package common
