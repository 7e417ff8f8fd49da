// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"errors"

	"github.com/ochairo/tckwatch/internal/domain/entities"
)

// MavenGateway defines read-only access to a Maven repository
type MavenGateway interface {
	// FetchMetadata returns the raw maven-metadata.xml document of a library
	FetchMetadata(ctx context.Context, library entities.Coordinates) (string, error)

	// FetchMetadataChecksum returns the published SHA-1 of maven-metadata.xml
	FetchMetadataChecksum(ctx context.Context, library entities.Coordinates) (string, error)

	// DownloadArtifact stores an artifact at destPath
	DownloadArtifact(ctx context.Context, artifact entities.MavenArtifact, destPath string) error

	// FetchArtifactChecksum returns the published digest (extension "sha1", "sha256", ...) of an artifact
	FetchArtifactChecksum(ctx context.Context, artifact entities.MavenArtifact, extension string) (string, error)

	// ArtifactURL returns the absolute URL of an artifact
	ArtifactURL(artifact entities.MavenArtifact) string
}

// ErrNotFound is returned when the repository answers 404
var ErrNotFound = errors.New("not found in Maven repository")
