package common

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// DefaultChecksumFunction is used to hash artifacts and auxiliary data.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512

	// DefaultFileMode is used when producing executables and staged files.
	DefaultFileMode os.FileMode = 0o755
)

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// GetFileChecksumString returns the base64-encoded checksum of a file,
// the form stored in receipts.
func GetFileChecksumString(path string) (string, error) {
	checksum, err := GetFileChecksum(path)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(checksum), nil
}

// DecodeChecksum converts a base64-encoded receipt checksum back to bytes.
func DecodeChecksum(encoded string) ([]byte, error) {
	checksum, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode checksum: %w", err)
	}

	return checksum, nil
}
