// Package services holds the domain logic shared by the tckwatch commands.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
)

// ErrNoTestedVersion is returned for a library whose index lists no tested version
var ErrNoTestedVersion = errors.New("cannot find any tested version")

// ErrChecksumMismatch is returned when maven-metadata.xml does not match its published digest
var ErrChecksumMismatch = errors.New("metadata checksum mismatch")

// versionTag is intentionally greedy: one <version> element per line is assumed
var versionTag = regexp.MustCompile(`<version>(.*)</version>`)

// ExtractVersions returns every <version> element of a maven-metadata.xml document, in document order
func ExtractVersions(metadata string) []string {
	matches := versionTag.FindAllStringSubmatch(metadata, -1)
	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		versions = append(versions, m[1])
	}
	return versions
}

// VersionsAfter returns the versions listed after the first occurrence of starting.
// It returns an empty list when starting is not listed.
func VersionsAfter(versions []string, starting string) []string {
	i := slices.Index(versions, starting)
	if i < 0 {
		return []string{}
	}
	return slices.Clone(versions[i+1:])
}

// RemoveAll returns versions without any element of remove, order kept
func RemoveAll(versions, remove []string) []string {
	if len(remove) == 0 {
		return versions
	}
	drop := make(map[string]struct{}, len(remove))
	for _, v := range remove {
		drop[v] = struct{}{}
	}
	kept := make([]string, 0, len(versions))
	for _, v := range versions {
		if _, ok := drop[v]; !ok {
			kept = append(kept, v)
		}
	}
	return kept
}

// FilterPreReleases drops pre-releases whose base version also has a stable release in versions.
// Versions that do not look like a release are kept.
func FilterPreReleases(versions []string) []string {
	stable := make(map[string]struct{})
	for _, v := range versions {
		if r := entities.ParseRelease(v); r.Matched && !r.IsPreRelease() {
			stable[r.Base] = struct{}{}
		}
	}

	kept := make([]string, 0, len(versions))
	for _, v := range versions {
		r := entities.ParseRelease(v)
		if r.IsPreRelease() {
			if _, ok := stable[r.Base]; ok {
				continue
			}
		}
		kept = append(kept, v)
	}
	return kept
}

// LatestTestedVersion returns the highest tested version of an index
func LatestTestedVersion(library entities.Coordinates, index entities.MetadataIndex) (string, error) {
	latest := entities.LatestVersion(index.TestedVersions())
	if latest == "" {
		return "", fmt.Errorf("%w for: %s", ErrNoTestedVersion, library.Module())
	}
	return latest, nil
}

// NewerVersionFinder computes the untested upstream versions of a library
type NewerVersionFinder struct {
	index          repositories.IndexRepository
	maven          gateways.MavenGateway
	checksum       gateways.ChecksumVerifier
	constraints    *ConstraintSet
	verifyMetadata bool
	logger         interfaces.Logger
}

// NewNewerVersionFinder creates a finder. Pass a ChecksumVerifier to check
// maven-metadata.xml against its published SHA-1 before trusting it.
func NewNewerVersionFinder(
	index repositories.IndexRepository,
	maven gateways.MavenGateway,
	checksum gateways.ChecksumVerifier,
	constraints *ConstraintSet,
	logger interfaces.Logger,
) *NewerVersionFinder {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &NewerVersionFinder{
		index:          index,
		maven:          maven,
		checksum:       checksum,
		constraints:    constraints,
		verifyMetadata: checksum != nil,
		logger:         logger,
	}
}

// FindNewerVersions returns the candidate versions of library, in repository order
func (f *NewerVersionFinder) FindNewerVersions(ctx context.Context, library entities.Coordinates) ([]string, error) {
	index, err := f.index.GetIndex(ctx, library)
	if err != nil && !errors.Is(err, repositories.ErrIndexNotFound) {
		return nil, err
	}

	starting, err := LatestTestedVersion(library, index)
	if err != nil {
		return nil, err
	}

	metadata, err := f.maven.FetchMetadata(ctx, library)
	if err != nil {
		return nil, err
	}
	if f.verifyMetadata {
		if err := f.checkMetadata(ctx, library, metadata); err != nil {
			return nil, err
		}
	}

	candidates := VersionsAfter(ExtractVersions(metadata), starting)
	candidates = RemoveAll(candidates, index.TestedVersions())
	candidates = FilterPreReleases(candidates)

	// An index that vanished since the first read is fatal here
	index, err = f.index.GetIndex(ctx, library)
	if err != nil {
		return nil, fmt.Errorf("missing index.json for %s: %w", library.Module(), err)
	}
	candidates = RemoveAll(candidates, index.SkippedVersions())
	candidates = f.constraints.Filter(library, candidates)

	f.logger.Debug("computed newer versions",
		interfaces.F("library", library.Module()),
		interfaces.F("starting", starting),
		interfaces.F("candidates", len(candidates)))
	return candidates, nil
}

func (f *NewerVersionFinder) checkMetadata(ctx context.Context, library entities.Coordinates, metadata string) error {
	sum, err := f.maven.FetchMetadataChecksum(ctx, library)
	if err != nil {
		return err
	}
	if err := f.checksum.VerifyBytes([]byte(metadata), sum); err != nil {
		return fmt.Errorf("%w for %s: %v", ErrChecksumMismatch, library.Module(), err)
	}
	return nil
}
