package entities

import (
	"fmt"
	"strings"
)

// Coordinates identifies a library release in the form 'group:artifact:version'
type Coordinates struct {
	Group    string
	Artifact string
	Version  string
}

// ParseCoordinates parses 'group:artifact:version'
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Coordinates{}, fmt.Errorf("coordinates must be in format <group>:<artifact>:<version>, got %q", s)
	}
	c := Coordinates{Group: parts[0], Artifact: parts[1], Version: parts[2]}
	if err := c.validate(true); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// ParseModule parses a library name 'group:artifact' (no version)
func ParseModule(s string) (Coordinates, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("library must be in format <group>:<artifact>, got %q", s)
	}
	c := Coordinates{Group: parts[0], Artifact: parts[1]}
	if err := c.validate(false); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

func (c Coordinates) validate(withVersion bool) error {
	if c.Group == "" {
		return fmt.Errorf("group must not be empty")
	}
	if c.Artifact == "" {
		return fmt.Errorf("artifact must not be empty")
	}
	if withVersion && c.Version == "" {
		return fmt.Errorf("version must not be empty")
	}
	return nil
}

// Module returns the library name 'group:artifact'
func (c Coordinates) Module() string {
	return c.Group + ":" + c.Artifact
}

// WithVersion returns a copy of c pinned to version
func (c Coordinates) WithVersion(version string) Coordinates {
	c.Version = version
	return c
}

func (c Coordinates) String() string {
	if c.Version == "" {
		return c.Module()
	}
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// GroupPath returns the group with dots replaced by slashes, as used in Maven repository layouts
func (c Coordinates) GroupPath() string {
	return strings.ReplaceAll(c.Group, ".", "/")
}

// SanitizedGroup returns the group usable as a Java package or Gradle project name
func (c Coordinates) SanitizedGroup() string {
	return sanitize(c.Group)
}

// SanitizedArtifact returns the artifact usable as a Java package or Gradle project name
func (c Coordinates) SanitizedArtifact() string {
	return sanitize(c.Artifact)
}

// CapitalizedSanitizedArtifact is SanitizedArtifact with the first letter upper-cased
func (c Coordinates) CapitalizedSanitizedArtifact() string {
	s := c.SanitizedArtifact()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ReplaceTemplate substitutes $group$, $artifact$, $version$ and their sanitized forms
func (c Coordinates) ReplaceTemplate(template string) string {
	r := strings.NewReplacer(
		"$group$", c.Group,
		"$sanitizedGroup$", c.SanitizedGroup(),
		"$artifact$", c.Artifact,
		"$sanitizedArtifact$", c.SanitizedArtifact(),
		"$capitalizedSanitizedArtifact$", c.CapitalizedSanitizedArtifact(),
		"$version$", c.Version,
	)
	return r.Replace(template)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.':
			return '_'
		}
		return r
	}, s)
}

// ModuleOf strips the version from a 'group:artifact:version' string.
// ok is false when s has no ':' after its first character.
func ModuleOf(s string) (module string, ok bool) {
	last := strings.LastIndex(s, ":")
	if last <= 0 {
		return "", false
	}
	return s[:last], true
}
