package common

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/packforge/packforge/internal/logger"
)

const (
	// MarkerFilename marks that a build or install is running right now
	// to avoid interleaved executions touching the same artifacts.
	MarkerFilename = "packforge-marker.bin"

	// markerLifetime is the period after which a stale marker is ignored.
	markerLifetime = 30 * time.Second

	// Base executable names; platform helpers append extension when needed.
	baseBuildExecutable   = "packforge-build"
	baseInstallExecutable = "packforge-install"
)

// BuildExecutable returns the platform-specific build binary name.
func BuildExecutable() string {
	return baseBuildExecutable + ExecutableExtension()
}

// InstallExecutable returns the platform-specific install binary name.
func InstallExecutable() string {
	return baseInstallExecutable + ExecutableExtension()
}

// ExecutableExtension returns ".exe" on Windows and "" elsewhere.
func ExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// IsJobRunningNow checks presence of the marker file and attempts recovery
// if it looks stale.
func IsJobRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a job marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The job marker is too old, attempting cleanup")

		if err = TerminateProcessByName(BuildExecutable()); err != nil {
			return true
		}

		if err = TerminateProcessByName(InstallExecutable()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Job marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read job marker: %v", err)

	return false
}

// CreateMarker writes the marker file claiming the shared artifacts.
func CreateMarker() error {
	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return err
	}

	return marker.Close()
}

// RemoveMarker releases the marker file. Best effort.
func RemoveMarker(ctx context.Context) {
	if err := os.Remove(MarkerFilename); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warnf(ctx, "Unable to remove job marker: %v", err)
	}
}

// TerminateProcessByName tries to kill processes with the provided executable name.
func TerminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// IsProcessRunning reports whether any process with the provided executable
// name is currently alive.
func IsProcessRunning(processName string) (bool, error) {
	processList, err := ps.Processes()
	if err != nil {
		return false, err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == processName {
			return true, nil
		}
	}

	return false, nil
}
