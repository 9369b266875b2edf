package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Asset declares one auxiliary data entry to embed into the artifact.
// Source may be a literal path or a glob pattern; Dest is the directory
// inside the bundle where matched files land.
type Asset struct {
	// Source is a path or glob pattern, relative to the manifest location.
	Source string `yaml:"source" toml:"source"`
	// Dest is the destination directory inside the bundle.
	Dest string `yaml:"dest" toml:"dest"`
	// Exclude lists glob patterns for file names to skip.
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude"`
}

// Manifest is the declarative input consumed by a single build.
// It is constructed once from a file, validated, and never mutated afterwards.
type Manifest struct {
	// EntryScript is the program the produced executable launches.
	EntryScript string `yaml:"entry_script" toml:"entry_script"`
	// OutputName is the name of the produced executable, without extension.
	OutputName string `yaml:"output_name" toml:"output_name"`
	// Windowed requests an executable that runs without a console window.
	Windowed bool `yaml:"windowed" toml:"windowed"`
	// OneFile requests a single self-contained executable.
	OneFile bool `yaml:"one_file" toml:"one_file"`
	// Compress requests executable compression by the bundler.
	Compress bool `yaml:"compress" toml:"compress"`
	// AuxiliaryData lists data files to embed, in declaration order.
	AuxiliaryData []Asset `yaml:"auxiliary_data,omitempty" toml:"auxiliary_data"`
	// ForcedModules lists modules the bundler cannot discover statically.
	ForcedModules []string `yaml:"forced_modules,omitempty" toml:"forced_modules"`
	// ModulePaths lists extra directories searched when resolving forced
	// modules, appended to the tool-level search paths.
	ModulePaths []string `yaml:"module_paths,omitempty" toml:"module_paths"`

	// BaseDir is the directory the manifest was loaded from. Relative paths
	// inside the manifest are resolved against it. Not persisted.
	BaseDir string `yaml:"-" toml:"-"`
}

// StagedFile is one resolved auxiliary data file ready for staging.
type StagedFile struct {
	// Source is the absolute path of the file on disk.
	Source string
	// Dest is the slash-separated path of the file inside the bundle.
	Dest string
}

// MissingAssetError reports an auxiliary data source that matched nothing on disk.
type MissingAssetError struct {
	// Path is the source path or pattern that did not match.
	Path string
}

// Error implements the error interface.
func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("auxiliary data source %q matched no files", e.Path)
}

// Unwrap lets errors.Is treat a missing asset as os.ErrNotExist.
func (e *MissingAssetError) Unwrap() error {
	return os.ErrNotExist
}

var (
	// ErrDestCollision is returned when two auxiliary entries stage to the same path.
	ErrDestCollision = errors.New("auxiliary data destination collision")

	// errEntryScriptRequired is returned when entry_script is missing.
	errEntryScriptRequired = errors.New("entry_script must be provided")
	// errOutputNameRequired is returned when output_name is missing.
	errOutputNameRequired = errors.New("output_name must be provided")
	// errOutputNameIsPath is returned when output_name contains path separators.
	errOutputNameIsPath = errors.New("output_name must be a bare name, not a path")
	// errSourceRequired is returned when an auxiliary entry has no source.
	errSourceRequired = errors.New("auxiliary data source must be provided")
	// errDestEscapes is returned when a destination leaves the bundle root.
	errDestEscapes = errors.New("auxiliary data destination must stay inside the bundle")
	// errBadModuleName is returned for forced module names the resolver cannot handle.
	errBadModuleName = errors.New("invalid forced module name")

	// moduleNameRE constrains forced module names to loader-resolvable identifiers.
	moduleNameRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)
)

// Validate checks the manifest for structural problems that need no disk access.
// Disk-level checks (entry script presence, asset existence) belong to the builder.
func Validate(m *Manifest) error {
	if strings.TrimSpace(m.EntryScript) == "" {
		return errEntryScriptRequired
	}

	if strings.TrimSpace(m.OutputName) == "" {
		return errOutputNameRequired
	}

	if strings.ContainsAny(m.OutputName, `/\`) {
		return fmt.Errorf("%q: %w", m.OutputName, errOutputNameIsPath)
	}

	for i, asset := range m.AuxiliaryData {
		if strings.TrimSpace(asset.Source) == "" {
			return fmt.Errorf("auxiliary data #%d: %w", i+1, errSourceRequired)
		}

		if destEscapes(asset.Dest) {
			return fmt.Errorf("auxiliary data #%d (%q): %w", i+1, asset.Dest, errDestEscapes)
		}

		for _, pattern := range asset.Exclude {
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("auxiliary data #%d exclude %q: %w", i+1, pattern, err)
			}
		}
	}

	for _, name := range m.ForcedModules {
		if !moduleNameRE.MatchString(name) {
			return fmt.Errorf("%q: %w", name, errBadModuleName)
		}
	}

	return nil
}

// ExpandAssets resolves every auxiliary data entry against the filesystem.
// Glob sources are expanded in sorted order so the result is deterministic.
// A source matching nothing yields a MissingAssetError; two entries staging
// to the same destination yield ErrDestCollision.
func (m *Manifest) ExpandAssets() ([]StagedFile, error) {
	var (
		staged []StagedFile
		seen   = make(map[string]struct{}, len(m.AuxiliaryData))
	)

	for i := range m.AuxiliaryData {
		asset := &m.AuxiliaryData[i]

		matches, err := m.expandSource(asset)
		if err != nil {
			return nil, err
		}

		for _, source := range matches {
			dest := destPath(asset.Dest, filepath.Base(source))
			if _, duplicate := seen[dest]; duplicate {
				return nil, fmt.Errorf("%q: %w", dest, ErrDestCollision)
			}

			seen[dest] = struct{}{}

			staged = append(staged, StagedFile{Source: source, Dest: dest})
		}
	}

	return staged, nil
}

// ResolvePath resolves a manifest-relative path against the manifest location.
func (m *Manifest) ResolvePath(path string) string {
	if filepath.IsAbs(path) || m.BaseDir == "" {
		return filepath.Clean(path)
	}

	return filepath.Join(m.BaseDir, path)
}

// expandSource returns the sorted source files for one asset entry,
// with exclude patterns already applied.
func (m *Manifest) expandSource(asset *Asset) ([]string, error) {
	pattern := m.ResolvePath(asset.Source)

	var matches []string

	if strings.ContainsAny(asset.Source, `*?[`) {
		expanded, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", asset.Source, err)
		}

		// Globs may match directories; only regular files can be staged.
		for _, match := range expanded {
			if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
				matches = append(matches, match)
			}
		}
	} else if info, err := os.Stat(pattern); err == nil && info.Mode().IsRegular() {
		matches = []string{pattern}
	}

	matches, err := applyExcludes(matches, asset.Exclude)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, &MissingAssetError{Path: asset.Source}
	}

	sort.Strings(matches)

	return matches, nil
}

// applyExcludes drops matches whose base name matches any exclude pattern.
func applyExcludes(matches []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return matches, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude %q: %w", pattern, err)
		}

		globs = append(globs, compiled)
	}

	kept := matches[:0]

	for _, match := range matches {
		name := filepath.Base(match)

		excluded := false

		for _, g := range globs {
			if g.Match(name) {
				excluded = true
				break
			}
		}

		if !excluded {
			kept = append(kept, match)
		}
	}

	return kept, nil
}

// destPath joins a destination directory and a file name into a
// slash-separated bundle path.
func destPath(dir, name string) string {
	dir = strings.Trim(strings.ReplaceAll(dir, `\`, "/"), "/")
	if dir == "" || dir == "." {
		return name
	}

	return dir + "/" + name
}

// destEscapes reports whether a destination directory climbs out of the bundle root.
func destEscapes(dir string) bool {
	if dir == "" {
		return false
	}

	if filepath.IsAbs(dir) || strings.HasPrefix(dir, `\`) {
		return true
	}

	clean := filepath.ToSlash(filepath.Clean(dir))

	return clean == ".." || strings.HasPrefix(clean, "../")
}
