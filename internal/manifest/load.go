package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// errUnsupportedFormat is returned for manifest files with an unknown extension.
var errUnsupportedFormat = errors.New("unsupported manifest format")

// Load reads a manifest from the provided path, picking the decoder by file
// extension (.yaml/.yml or .toml), and validates it. Relative paths inside
// the manifest are later resolved against the manifest's directory.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(contents, &m); err != nil {
			return nil, fmt.Errorf("unmarshal manifest: %w", err)
		}
	case ".toml":
		if err = toml.Unmarshal(contents, &m); err != nil {
			return nil, fmt.Errorf("unmarshal manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", filepath.Ext(path), errUnsupportedFormat)
	}

	m.BaseDir = filepath.Dir(filepath.Clean(path))

	if err = Validate(&m); err != nil {
		return nil, err
	}

	return &m, nil
}
