// Package jsonindex provides the file-based metadata index repository.
package jsonindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
	"github.com/zeebo/errs"
)

// Error is the error class of this package
var Error = errs.Class("index")

// IndexFileName is the per-library index file name
const IndexFileName = "index.json"

// IndexRepository implements repositories.IndexRepository over metadata/<group>/<artifact>/index.json
type IndexRepository struct {
	metadataDir string
	schema      *schemaValidator
	rootSchema  *schemaValidator
}

// NewIndexRepository creates a repository rooted at metadataDir
func NewIndexRepository(metadataDir string) *IndexRepository {
	return &IndexRepository{
		metadataDir: metadataDir,
		schema:      newSchemaValidator("library-index.schema.json", librarySchema),
		rootSchema:  newSchemaValidator("root-index.schema.json", rootSchema),
	}
}

// MetadataDir returns the repository root
func (r *IndexRepository) MetadataDir() string {
	return r.metadataDir
}

// IndexPath returns the index file location of a library
func (r *IndexRepository) IndexPath(library entities.Coordinates) string {
	return filepath.Join(r.metadataDir, library.Group, library.Artifact, IndexFileName)
}

// RootIndexPath returns the location of the metadata/index.json library listing
func (r *IndexRepository) RootIndexPath() string {
	return filepath.Join(r.metadataDir, IndexFileName)
}

// GetIndex loads and decodes the index file of a library
func (r *IndexRepository) GetIndex(_ context.Context, library entities.Coordinates) (entities.MetadataIndex, error) {
	data, err := r.read(library)
	if err != nil {
		return nil, err
	}

	var index entities.MetadataIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, Error.New("failed to parse %s: %v", r.IndexPath(library), err)
	}
	return index, nil
}

// SaveIndex encodes the index with two-space indentation and a trailing newline
func (r *IndexRepository) SaveIndex(_ context.Context, library entities.Coordinates, index entities.MetadataIndex) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(index); err != nil {
		return Error.Wrap(err)
	}

	path := r.IndexPath(library)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return Error.Wrap(err)
	}
	//nolint:gosec // G306: index files are committed to the repository and must be world-readable
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return Error.New("failed to write %s: %v", path, err)
	}
	return nil
}

// ListLibraries returns every <group>/<artifact> directory holding an index file, sorted by path
func (r *IndexRepository) ListLibraries(_ context.Context) ([]entities.Coordinates, error) {
	groups, err := os.ReadDir(r.metadataDir)
	if err != nil {
		return nil, Error.New("failed to read metadata directory: %v", err)
	}

	libraries := make([]entities.Coordinates, 0)
	for _, group := range groups {
		if !group.IsDir() {
			continue
		}
		artifacts, err := os.ReadDir(filepath.Join(r.metadataDir, group.Name()))
		if err != nil {
			return nil, Error.Wrap(err)
		}
		for _, artifact := range artifacts {
			if !artifact.IsDir() {
				continue
			}
			library := entities.Coordinates{Group: group.Name(), Artifact: artifact.Name()}
			if _, err := os.Stat(r.IndexPath(library)); err == nil {
				libraries = append(libraries, library)
			}
		}
	}
	return libraries, nil
}

// ValidateSchema checks the raw index file against the library index JSON schema
func (r *IndexRepository) ValidateSchema(_ context.Context, library entities.Coordinates) error {
	data, err := r.read(library)
	if err != nil {
		return err
	}
	return r.schema.validate(data)
}

// ValidateRootSchema checks metadata/index.json against the root index JSON schema
func (r *IndexRepository) ValidateRootSchema(_ context.Context) error {
	data, err := r.readFile(r.RootIndexPath())
	if err != nil {
		return err
	}
	return r.rootSchema.validate(data)
}

func (r *IndexRepository) read(library entities.Coordinates) ([]byte, error) {
	return r.readFile(r.IndexPath(library))
}

func (r *IndexRepository) readFile(path string) ([]byte, error) {
	//nolint:gosec // G304: path is built from the metadata root and library coordinates
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Error.Wrap(fmt.Errorf("%s: %w", path, repositories.ErrIndexNotFound))
	}
	if err != nil {
		return nil, Error.New("failed to read %s: %v", path, err)
	}
	return data, nil
}
