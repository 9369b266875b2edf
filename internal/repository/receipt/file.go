package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	domain "github.com/packforge/packforge/internal/domain/build"
)

// Repository defines persistence operations for build receipts.
type Repository interface {
	Load(ctx context.Context) (*domain.Receipt, error)
	Save(ctx context.Context, rec *domain.Receipt) error
}

// FileRepository persists a build receipt to a YAML file on disk.
// YAML keeps receipts reviewable in code review and diffable across builds.
type FileRepository struct {
	// path is the filesystem location of the receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when the receipt file does not exist yet.
var ErrNotFound = errors.New("receipt not found")

// DefaultFilePermissions is used when writing receipt files.
const DefaultFilePermissions = 0o644

// Filename returns the conventional receipt file name for an output name.
func Filename(outputName string) string {
	return outputName + ".receipt.yaml"
}

// fileModel is the on-disk YAML representation of a receipt.
type fileModel struct {
	ToolVersion      string                     `yaml:"tool_version"`
	OutputName       string                     `yaml:"output_name"`
	EntryScript      string                     `yaml:"entry_script"`
	Windowed         bool                       `yaml:"windowed"`
	OneFile          bool                       `yaml:"one_file"`
	Compress         bool                       `yaml:"compress"`
	Modules          []string                   `yaml:"modules,omitempty"`
	Files            map[string]fileRecordModel `yaml:"files,omitempty"`
	ArtifactPath     string                     `yaml:"artifact_path"`
	ArtifactChecksum string                     `yaml:"artifact_checksum"`
	BuiltByHost      string                     `yaml:"built_by_host,omitempty"`
	BuiltByUser      string                     `yaml:"built_by_user,omitempty"`
}

// fileRecordModel is the on-disk representation of one auxiliary data file.
type fileRecordModel struct {
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the receipt file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var model fileModel
	if err = yaml.Unmarshal(contents, &model); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return fromModel(&model), nil
}

// Save writes the receipt to disk using YAML representation.
func (r *FileRepository) Save(_ context.Context, rec *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(toModel(rec))
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}

// fromModel converts the on-disk representation into the domain Receipt model.
func fromModel(model *fileModel) *domain.Receipt {
	var actor *domain.Actor
	if model.BuiltByHost != "" || model.BuiltByUser != "" {
		actor = &domain.Actor{
			Hostname: model.BuiltByHost,
			Username: model.BuiltByUser,
		}
	}

	var files map[string]domain.FileRecord
	if len(model.Files) > 0 {
		files = make(map[string]domain.FileRecord, len(model.Files))

		for dest, record := range model.Files {
			files[dest] = domain.FileRecord{
				Source:   record.Source,
				Checksum: record.Checksum,
			}
		}
	}

	return &domain.Receipt{
		ToolVersion: model.ToolVersion,
		OutputName:  model.OutputName,
		EntryScript: model.EntryScript,
		Windowed:    model.Windowed,
		OneFile:     model.OneFile,
		Compress:    model.Compress,
		Modules:     model.Modules,
		Files:       files,
		Artifact: domain.Artifact{
			Path:     model.ArtifactPath,
			Checksum: model.ArtifactChecksum,
		},
		BuiltBy: actor,
	}
}

// toModel converts the domain Receipt model into the on-disk representation.
func toModel(rec *domain.Receipt) *fileModel {
	var files map[string]fileRecordModel
	if len(rec.Files) > 0 {
		files = make(map[string]fileRecordModel, len(rec.Files))

		for dest, record := range rec.Files {
			files[dest] = fileRecordModel{
				Source:   record.Source,
				Checksum: record.Checksum,
			}
		}
	}

	model := &fileModel{
		ToolVersion:      rec.ToolVersion,
		OutputName:       rec.OutputName,
		EntryScript:      rec.EntryScript,
		Windowed:         rec.Windowed,
		OneFile:          rec.OneFile,
		Compress:         rec.Compress,
		Modules:          rec.Modules,
		Files:            files,
		ArtifactPath:     rec.Artifact.Path,
		ArtifactChecksum: rec.Artifact.Checksum,
	}

	if rec.BuiltBy != nil {
		model.BuiltByHost = rec.BuiltBy.Hostname
		model.BuiltByUser = rec.BuiltBy.Username
	}

	return model
}
