package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
)

// UpdateResult describes what AddTestedVersion changed
type UpdateResult struct {
	UpdatedEntries int
	// Promoted maps a pre-release metadata-version to the release that replaced it
	Promoted map[string]string
	// RemovedPreReleases lists tested pre-releases dropped in favour of the new release
	RemovedPreReleases []string
}

// Changed reports whether the index was modified
func (r UpdateResult) Changed() bool {
	return r.UpdatedEntries > 0
}

// TestedVersionUpdater records a newly tested version in a library index
type TestedVersionUpdater struct {
	index       repositories.IndexRepository
	metadataDir string
	testsDir    string
	logger      interfaces.Logger
}

// NewTestedVersionUpdater creates an updater working on metadataDir and testsDir
func NewTestedVersionUpdater(index repositories.IndexRepository, metadataDir, testsDir string, logger interfaces.Logger) *TestedVersionUpdater {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &TestedVersionUpdater{
		index:       index,
		metadataDir: metadataDir,
		testsDir:    testsDir,
		logger:      logger,
	}
}

// AddTestedVersion adds release.Version to the first entry that already tests lastSupported.
// Every such entry is still counted as updated.
// A stable release prunes the same-base pre-releases and promotes a pre-release
// metadata-version, renaming its metadata and test directories.
func (u *TestedVersionUpdater) AddTestedVersion(ctx context.Context, release entities.Coordinates, lastSupported string) (UpdateResult, error) {
	result := UpdateResult{Promoted: map[string]string{}}

	index, err := u.index.GetIndex(ctx, release)
	if err != nil {
		return result, err
	}

	newVersion := release.Version
	for i := range index {
		entry := &index[i]
		if !slices.Contains(entry.TestedVersions, lastSupported) {
			continue
		}
		result.UpdatedEntries++

		// a version is recorded under one metadata-version only
		if !index.IsTested(newVersion) {
			entry.TestedVersions = append(entry.TestedVersions, newVersion)
		}
		entities.SortVersions(entry.TestedVersions)

		if err := u.handlePreReleases(index, i, release, &result); err != nil {
			return result, err
		}
	}

	if !result.Changed() {
		u.logger.Warn("no entry tests the last supported version",
			interfaces.F("library", release.Module()),
			interfaces.F("last_supported", lastSupported))
		return result, nil
	}

	if err := u.index.SaveIndex(ctx, release, index); err != nil {
		return result, err
	}
	u.logger.Info("recorded tested version",
		interfaces.F("library", release.Module()),
		interfaces.F("version", newVersion),
		interfaces.F("entries", result.UpdatedEntries))
	return result, nil
}

func (u *TestedVersionUpdater) handlePreReleases(index entities.MetadataIndex, i int, release entities.Coordinates, result *UpdateResult) error {
	newVersion := release.Version
	info := entities.ParseRelease(newVersion)
	if !info.Matched || info.IsPreRelease() {
		return nil
	}

	entry := &index[i]
	entry.TestedVersions = slices.DeleteFunc(entry.TestedVersions, func(v string) bool {
		r := entities.ParseRelease(v)
		if r.IsPreRelease() && r.Base == info.Base {
			result.RemovedPreReleases = append(result.RemovedPreReleases, v)
			return true
		}
		return false
	})

	oldMetadata := entry.MetadataVersion
	meta := entities.ParseRelease(oldMetadata)
	if !meta.IsPreRelease() || meta.Base != info.Base {
		return nil
	}

	library := entities.Coordinates{Group: release.Group, Artifact: release.Artifact}
	metadataBase := filepath.Join(u.metadataDir, library.Group, library.Artifact)
	if err := moveIfExists(filepath.Join(metadataBase, oldMetadata), filepath.Join(metadataBase, newVersion)); err != nil {
		return err
	}

	testsBase := filepath.Join(u.testsDir, library.Group, library.Artifact)
	if err := moveIfExists(filepath.Join(testsBase, oldMetadata), filepath.Join(testsBase, newVersion)); err != nil {
		return err
	}
	if err := UpdateGradleProperties(filepath.Join(testsBase, newVersion, "gradle.properties"), release); err != nil {
		return err
	}

	for j := range index {
		if index[j].TestVersion == oldMetadata {
			index[j].TestVersion = newVersion
		}
	}
	entry.MetadataVersion = newVersion
	result.Promoted[oldMetadata] = newVersion

	u.logger.Info("promoted pre-release metadata",
		interfaces.F("library", library.Module()),
		interfaces.F("from", oldMetadata),
		interfaces.F("to", newVersion))
	return nil
}

func moveIfExists(from, to string) error {
	if _, err := os.Stat(from); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename %s: %w", from, err)
	}
	return nil
}

// UpdateGradleProperties points library.version, library.coordinates and metadata.dir
// of a test project at release. A missing file is ignored.
func UpdateGradleProperties(path string, release entities.Coordinates) error {
	//nolint:gosec // G304: path is built from the tests root and library coordinates
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "library.version"):
			line = "library.version = " + release.Version
		case strings.HasPrefix(line, "library.coordinates"):
			line = "library.coordinates = " + release.String()
		case strings.HasPrefix(line, "metadata.dir"):
			line = release.ReplaceTemplate("metadata.dir = $group$/$artifact$/$version$/")
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	//nolint:gosec // G306: committed build file
	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
