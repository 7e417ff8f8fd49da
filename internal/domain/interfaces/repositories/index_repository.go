// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"
	"errors"

	"github.com/ochairo/tckwatch/internal/domain/entities"
)

// IndexRepository defines access to the per-library metadata index files
type IndexRepository interface {
	// GetIndex loads metadata/<group>/<artifact>/index.json
	GetIndex(ctx context.Context, library entities.Coordinates) (entities.MetadataIndex, error)

	// SaveIndex rewrites the index file of a library
	SaveIndex(ctx context.Context, library entities.Coordinates, index entities.MetadataIndex) error

	// ListLibraries returns every library that has an index file
	ListLibraries(ctx context.Context) ([]entities.Coordinates, error)

	// IndexPath returns the index file location of a library
	IndexPath(library entities.Coordinates) string

	// ValidateSchema checks the index file of a library against the index JSON schema
	ValidateSchema(ctx context.Context, library entities.Coordinates) error

	// RootIndexPath returns the location of metadata/index.json
	RootIndexPath() string

	// ValidateRootSchema checks metadata/index.json against the root index JSON schema
	ValidateRootSchema(ctx context.Context) error
}

// ErrIndexNotFound is returned when a library has no index file
var ErrIndexNotFound = errors.New("metadata index not found")
