package services

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/ochairo/tckwatch/internal/domain/entities"
)

// ConstraintSet restricts candidate versions per library with semver constraints
type ConstraintSet struct {
	byLibrary map[string]*semver.Constraints
}

// NewConstraintSet parses library -> constraint pairs such as "io.netty:netty-codec-http": "< 5.0"
func NewConstraintSet(raw map[string]string) (*ConstraintSet, error) {
	set := &ConstraintSet{byLibrary: make(map[string]*semver.Constraints, len(raw))}
	for library, expr := range raw {
		c, err := semver.NewConstraint(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid constraint for %s: %w", library, err)
		}
		set.byLibrary[library] = c
	}
	return set, nil
}

// Filter drops versions that parse as semver and do not satisfy the library constraint.
// A nil set, a library without constraint and unparsable versions pass through.
func (s *ConstraintSet) Filter(library entities.Coordinates, versions []string) []string {
	if s == nil {
		return versions
	}
	c, ok := s.byLibrary[library.Module()]
	if !ok {
		return versions
	}

	kept := make([]string, 0, len(versions))
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil || c.Check(sv) {
			kept = append(kept, v)
		}
	}
	return kept
}

// Len returns the number of constrained libraries
func (s *ConstraintSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byLibrary)
}
