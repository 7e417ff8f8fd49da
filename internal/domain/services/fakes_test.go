package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
)

// memoryIndex is an in-memory IndexRepository keyed by "group:artifact"
type memoryIndex struct {
	indexes   map[string]entities.MetadataIndex
	schemaErr map[string]error
	reads     int
	// dropAfter removes an index after the given number of reads
	dropAfter map[string]int
	// rootErr is returned by ValidateRootSchema
	rootErr error
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{
		indexes:   map[string]entities.MetadataIndex{},
		schemaErr: map[string]error{},
		dropAfter: map[string]int{},
	}
}

func (m *memoryIndex) put(library string, index entities.MetadataIndex) {
	m.indexes[library] = index
}

func (m *memoryIndex) GetIndex(_ context.Context, library entities.Coordinates) (entities.MetadataIndex, error) {
	m.reads++
	key := library.Module()
	if n, ok := m.dropAfter[key]; ok {
		if n == 0 {
			delete(m.indexes, key)
		}
		m.dropAfter[key] = n - 1
	}
	index, ok := m.indexes[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, repositories.ErrIndexNotFound)
	}
	return index, nil
}

func (m *memoryIndex) SaveIndex(_ context.Context, library entities.Coordinates, index entities.MetadataIndex) error {
	m.indexes[library.Module()] = index
	return nil
}

func (m *memoryIndex) ListLibraries(_ context.Context) ([]entities.Coordinates, error) {
	names := make([]string, 0, len(m.indexes))
	for name := range m.indexes {
		names = append(names, name)
	}
	sort.Strings(names)

	libraries := make([]entities.Coordinates, 0, len(names))
	for _, name := range names {
		c, err := entities.ParseModule(name)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, c)
	}
	return libraries, nil
}

func (m *memoryIndex) IndexPath(library entities.Coordinates) string {
	return filepath.Join("metadata", library.Group, library.Artifact, "index.json")
}

func (m *memoryIndex) ValidateSchema(ctx context.Context, library entities.Coordinates) error {
	if _, err := m.GetIndex(ctx, library); err != nil {
		return err
	}
	return m.schemaErr[library.Module()]
}

func (m *memoryIndex) RootIndexPath() string {
	return filepath.Join("metadata", "index.json")
}

func (m *memoryIndex) ValidateRootSchema(context.Context) error {
	return m.rootErr
}

// fakeMaven serves canned maven-metadata.xml documents keyed by "group:artifact"
type fakeMaven struct {
	metadata  map[string]string
	checksums map[string]string
	err       error
}

func (f *fakeMaven) FetchMetadata(_ context.Context, library entities.Coordinates) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	doc, ok := f.metadata[library.Module()]
	if !ok {
		return "", fmt.Errorf("%s: %w", library.Module(), gateways.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeMaven) FetchMetadataChecksum(_ context.Context, library entities.Coordinates) (string, error) {
	return f.checksums[library.Module()], nil
}

func (f *fakeMaven) DownloadArtifact(context.Context, entities.MavenArtifact, string) error {
	return nil
}

func (f *fakeMaven) FetchArtifactChecksum(context.Context, entities.MavenArtifact, string) (string, error) {
	return "", nil
}

func (f *fakeMaven) ArtifactURL(artifact entities.MavenArtifact) string {
	return "https://repo.example.org/" + artifact.Path()
}

// metadataDoc renders a maven-metadata.xml listing versions
func metadataDoc(versions ...string) string {
	doc := "<metadata>\n  <versioning>\n    <versions>\n"
	for _, v := range versions {
		doc += "      <version>" + v + "</version>\n"
	}
	return doc + "    </versions>\n  </versioning>\n</metadata>\n"
}
