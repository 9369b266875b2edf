package builder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// resolveModules locates every forced module in the provided search paths.
// A module name like "feeds.live" maps to the path segments "feeds/live";
// a directory or any file with that stem counts as a resolution. The result
// maps module names to the resolved filesystem paths.
func resolveModules(searchPaths, names []string) (map[string]string, error) {
	resolved := make(map[string]string, len(names))

	for _, name := range names {
		path, ok := resolveModule(searchPaths, name)
		if !ok {
			return nil, &BuildError{Kind: KindModuleResolutionFailed, Subject: name}
		}

		resolved[name] = path
	}

	return resolved, nil
}

// resolveModule searches for a single module, first match wins.
func resolveModule(searchPaths []string, name string) (string, bool) {
	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))

	for _, root := range searchPaths {
		candidate := filepath.Join(root, rel)

		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}

		matches, err := filepath.Glob(candidate + ".*")
		if err != nil || len(matches) == 0 {
			continue
		}

		// Sorted so resolution does not depend on directory order.
		sort.Strings(matches)

		return matches[0], true
	}

	return "", false
}
