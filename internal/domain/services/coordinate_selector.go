package services

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
)

var fractional = regexp.MustCompile(`^(\d+)/(\d+)$`)

// IsFractionalBatch reports whether s has the batch form "k/n"
func IsFractionalBatch(s string) bool {
	return fractional.MatchString(s)
}

// ParseFraction parses a "k/n" batch selector; k and n are 1-based and k <= n
func ParseFraction(s string) (k, n int, err error) {
	m := fractional.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("not a fractional batch: %q", s)
	}
	if k, err = strconv.Atoi(m[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid batch number: %w", err)
	}
	if n, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, fmt.Errorf("invalid batch size: %w", err)
	}
	switch {
	case k <= 0:
		return 0, 0, fmt.Errorf("cannot have a batch number less than 1")
	case n <= 0:
		return 0, 0, fmt.Errorf("cannot have a batch size less than 1")
	case k > n:
		return 0, 0, fmt.Errorf("cannot have a batch number larger than the batch size")
	}
	return k, n, nil
}

// BatchCoordinates sorts coordinates and returns every n-th one starting at index k-1
func BatchCoordinates(coordinates []string, k, n int) []string {
	sorted := slices.Clone(coordinates)
	sort.Strings(sorted)

	batch := make([]string, 0, len(sorted)/n+1)
	for i := k - 1; i < len(sorted); i += n {
		batch = append(batch, sorted[i])
	}
	return batch
}

// Filter matches coordinates against 'group[:artifact[:version]]'; empty parts match anything
type Filter struct {
	Group    string
	Artifact string
	Version  string
}

// ParseFilter parses a coordinate filter; "" and "all" match every library
func ParseFilter(s string) (Filter, error) {
	if s == "" || s == "all" {
		return Filter{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 || slices.Contains(parts, "") {
		return Filter{}, fmt.Errorf("invalid coordinate filter %q, expected group[:artifact[:version]]", s)
	}
	var f Filter
	f.Group = parts[0]
	if len(parts) > 1 {
		f.Artifact = parts[1]
	}
	if len(parts) > 2 {
		f.Version = parts[2]
	}
	return f, nil
}

// MatchesLibrary reports whether library falls under the group/artifact part of f
func (f Filter) MatchesLibrary(library entities.Coordinates) bool {
	return (f.Group == "" || f.Group == library.Group) && (f.Artifact == "" || f.Artifact == library.Artifact)
}

// CoordinateSelector resolves coordinate filters against the metadata tree
type CoordinateSelector struct {
	index repositories.IndexRepository
}

// NewCoordinateSelector creates a selector over index
func NewCoordinateSelector(index repositories.IndexRepository) *CoordinateSelector {
	return &CoordinateSelector{index: index}
}

// Matching returns the sorted, distinct coordinates selected by one filter.
// Without a version every entry yields group:artifact:metadata-version; with a pinned
// version an entry yields it when the version is tested.
func (s *CoordinateSelector) Matching(ctx context.Context, filter string) ([]string, error) {
	if IsFractionalBatch(filter) {
		k, n, err := ParseFraction(filter)
		if err != nil {
			return nil, err
		}
		all, err := s.Matching(ctx, "all")
		if err != nil {
			return nil, err
		}
		return BatchCoordinates(all, k, n), nil
	}

	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	libraries, err := s.index.ListLibraries(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, library := range libraries {
		if !f.MatchesLibrary(library) {
			continue
		}
		index, err := s.index.GetIndex(ctx, library)
		if err != nil {
			return nil, err
		}
		for _, entry := range index {
			switch {
			case f.Version == "" && entry.MetadataVersion != "":
				seen[library.WithVersion(entry.MetadataVersion).String()] = struct{}{}
			case f.Version != "" && slices.Contains(entry.TestedVersions, f.Version):
				seen[library.WithVersion(f.Version).String()] = struct{}{}
			}
		}
	}

	coordinates := make([]string, 0, len(seen))
	for c := range seen {
		coordinates = append(coordinates, c)
	}
	sort.Strings(coordinates)
	return coordinates, nil
}

// Resolve applies a whitespace separated list of filters and returns the union, first-seen order
func (s *CoordinateSelector) Resolve(ctx context.Context, filters string) ([]string, error) {
	fields := strings.Fields(filters)
	if len(fields) == 0 {
		fields = []string{"all"}
	}

	var resolved []string
	seen := make(map[string]struct{})
	for _, filter := range fields {
		coordinates, err := s.Matching(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, c := range coordinates {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				resolved = append(resolved, c)
			}
		}
	}
	return resolved, nil
}

// DistinctLibraries reduces 'group:artifact:version' strings to libraries in first-seen
// order, skipping names that start with one of the infrastructure prefixes and
// strings without a ':' separator.
func DistinctLibraries(coordinates []string, infrastructurePrefixes []string) []entities.Coordinates {
	libraries := make([]entities.Coordinates, 0)
	seen := make(map[string]struct{})
	for _, coord := range coordinates {
		name, ok := entities.ModuleOf(coord)
		if !ok || hasAnyPrefix(name, infrastructurePrefixes) {
			continue
		}

		// "g:a:b:v" leaves a name with more than one ':'; the first two parts name the library
		group, artifact, found := strings.Cut(name, ":")
		artifact, _, _ = strings.Cut(artifact, ":")
		if !found || group == "" || artifact == "" {
			continue
		}
		library := entities.Coordinates{Group: group, Artifact: artifact}
		if _, dup := seen[library.Module()]; dup {
			continue
		}
		seen[library.Module()] = struct{}{}
		libraries = append(libraries, library)
	}
	return libraries
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
