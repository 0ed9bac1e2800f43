package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/project"
)

// ErrInvalidName is returned for project names that would escape the store directory.
var ErrInvalidName = errors.New("invalid project name")

// Store implements ports.ProjectStore using the local filesystem.
// Each project is one file named after it; Load accepts either format.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat sets the encoding used by Save.
func WithFormat(f Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".mbt/projects".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".mbt", "projects")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

var knownExts = []string{".json", ".yaml", ".yml"}

// Save persists the project atomically, replacing files saved under the
// same name in another format.
func (s *Store) Save(ctx context.Context, name string, doc *project.Document) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure project directory: %w", err)
	}

	data, err := Encode(doc, s.Format)
	if err != nil {
		return fmt.Errorf("failed to encode project %q: %w", name, err)
	}

	dest := filepath.Join(s.BasePath, name+s.Format.Ext())
	if err := WriteFileAtomic(dest, data); err != nil {
		return err
	}

	for _, ext := range knownExts {
		if other := filepath.Join(s.BasePath, name+ext); other != dest {
			_ = os.Remove(other)
		}
	}
	return nil
}

// Load reads the project saved under name.
func (s *Store) Load(ctx context.Context, name string) (*project.Document, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	for _, ext := range knownExts {
		path := filepath.Join(s.BasePath, name+ext)
		doc, err := ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return doc, err
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, name)
}

// Delete removes every file stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	for _, ext := range knownExts {
		err := os.Remove(filepath.Join(s.BasePath, name+ext))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete project file: %w", err)
		}
	}
	return nil
}

// List returns all stored project names.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || !slices.Contains(knownExts, ext) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ext))
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// ReadFile loads a project document from an explicit path.
func ReadFile(path string) (*project.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteFile saves a project document to an explicit path, picking the
// format from its extension.
func WriteFile(path string, doc *project.Document) error {
	data, err := Encode(doc, FormatFromPath(path))
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes to a temporary file in the same directory, syncs it
// and renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Close before rename; Windows cannot rename open files.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
