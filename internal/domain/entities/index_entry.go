package entities

import "slices"

// MetadataIndexEntry is one element of metadata/<group>/<artifact>/index.json.
// Group and artifact come from the directory path, not from the entry.
type MetadataIndexEntry struct {
	Latest          *bool          `json:"latest,omitempty"`
	Override        *bool          `json:"override,omitempty"`
	DefaultFor      string         `json:"default-for,omitempty"`
	MetadataVersion string         `json:"metadata-version,omitempty"`
	TestVersion     string         `json:"test-version,omitempty"`
	TestedVersions  []string       `json:"tested-versions"`
	SkippedVersions []SkippedEntry `json:"skipped-versions,omitempty"`
	AllowedPackages []string       `json:"allowed-packages,omitempty"`
	Requires        []string       `json:"requires,omitempty"`
}

// SkippedEntry records a version that must not be proposed for testing
type SkippedEntry struct {
	Version string `json:"version"`
	Reason  string `json:"reason,omitempty"`
}

// MetadataIndex is the full content of a library index file
type MetadataIndex []MetadataIndexEntry

// TestedVersions returns the tested versions of every entry, in file order
func (idx MetadataIndex) TestedVersions() []string {
	var versions []string
	for _, e := range idx {
		versions = append(versions, e.TestedVersions...)
	}
	return versions
}

// SkippedVersions returns the skipped versions of every entry, in file order
func (idx MetadataIndex) SkippedVersions() []string {
	var versions []string
	for _, e := range idx {
		for _, s := range e.SkippedVersions {
			versions = append(versions, s.Version)
		}
	}
	return versions
}

// IsTested reports whether version appears in any entry's tested-versions
func (idx MetadataIndex) IsTested(version string) bool {
	for _, e := range idx {
		if slices.Contains(e.TestedVersions, version) {
			return true
		}
	}
	return false
}
