// Package entities defines core domain models and data structures.
package entities

import "fmt"

// MavenArtifact is a single file published for a release in a Maven repository
type MavenArtifact struct {
	Coordinates Coordinates
	Extension   string // "pom", "jar", ...
}

// FileName returns '<artifact>-<version>.<extension>'
func (a MavenArtifact) FileName() string {
	return fmt.Sprintf("%s-%s.%s", a.Coordinates.Artifact, a.Coordinates.Version, a.Extension)
}

// Path returns the repository-relative path of the artifact
func (a MavenArtifact) Path() string {
	c := a.Coordinates
	return fmt.Sprintf("%s/%s/%s/%s", c.GroupPath(), c.Artifact, c.Version, a.FileName())
}
