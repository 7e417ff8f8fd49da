package services

import (
	"context"
	"testing"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFraction(t *testing.T) {
	tests := []struct {
		in      string
		k, n    int
		wantErr string
	}{
		{in: "1/4", k: 1, n: 4},
		{in: "4/4", k: 4, n: 4},
		{in: "0/4", wantErr: "less than 1"},
		{in: "1/0", wantErr: "batch size less than 1"},
		{in: "5/4", wantErr: "larger than the batch size"},
		{in: "a/4", wantErr: "not a fractional batch"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, n, err := ParseFraction(tt.in)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.k, k)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestBatchCoordinates(t *testing.T) {
	coords := []string{"e:e:1", "a:a:1", "d:d:1", "b:b:1", "c:c:1"}

	assert.Equal(t, []string{"a:a:1", "c:c:1", "e:e:1"}, BatchCoordinates(coords, 1, 2))
	assert.Equal(t, []string{"b:b:1", "d:d:1"}, BatchCoordinates(coords, 2, 2))
	assert.Equal(t, []string{"e:e:1"}, BatchCoordinates(coords, 5, 5))
	assert.Empty(t, BatchCoordinates(nil, 1, 3))

	// every coordinate lands in exactly one batch
	var all []string
	for k := 1; k <= 3; k++ {
		all = append(all, BatchCoordinates(coords, k, 3)...)
	}
	assert.ElementsMatch(t, coords, all)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("all")
	require.NoError(t, err)
	assert.Equal(t, Filter{}, f)

	f, err = ParseFilter("io.netty:netty-buffer:4.1.0")
	require.NoError(t, err)
	assert.Equal(t, Filter{Group: "io.netty", Artifact: "netty-buffer", Version: "4.1.0"}, f)

	for _, bad := range []string{"a::b", "a:b:c:d", ":a"} {
		_, err := ParseFilter(bad)
		assert.Error(t, err, bad)
	}
}

func newSelectorFixture() *CoordinateSelector {
	index := newMemoryIndex()
	index.put("io.netty:netty-buffer", entities.MetadataIndex{
		{MetadataVersion: "4.1.0", TestedVersions: []string{"4.1.0", "4.1.5"}},
		{MetadataVersion: "4.2.0", TestedVersions: []string{"4.2.0"}},
	})
	index.put("io.netty:netty-codec", entities.MetadataIndex{
		{MetadataVersion: "4.1.0", TestedVersions: []string{"4.1.0"}},
	})
	index.put("org.postgresql:postgresql", entities.MetadataIndex{
		{MetadataVersion: "42.7.3", TestedVersions: []string{"42.7.3"}},
	})
	return NewCoordinateSelector(index)
}

func TestCoordinateSelector_Matching(t *testing.T) {
	ctx := context.Background()
	s := newSelectorFixture()

	tests := []struct {
		filter string
		want   []string
	}{
		{"all", []string{"io.netty:netty-buffer:4.1.0", "io.netty:netty-buffer:4.2.0", "io.netty:netty-codec:4.1.0", "org.postgresql:postgresql:42.7.3"}},
		{"io.netty", []string{"io.netty:netty-buffer:4.1.0", "io.netty:netty-buffer:4.2.0", "io.netty:netty-codec:4.1.0"}},
		{"io.netty:netty-buffer", []string{"io.netty:netty-buffer:4.1.0", "io.netty:netty-buffer:4.2.0"}},
		{"io.netty:netty-buffer:4.1.5", []string{"io.netty:netty-buffer:4.1.5"}},
		{"io.netty:netty-buffer:9.9", []string{}},
		{"2/2", []string{"io.netty:netty-buffer:4.2.0", "org.postgresql:postgresql:42.7.3"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := s.Matching(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := s.Matching(ctx, "3/2")
	assert.Error(t, err)
}

func TestCoordinateSelector_Resolve(t *testing.T) {
	s := newSelectorFixture()

	got, err := s.Resolve(context.Background(), " org.postgresql  io.netty:netty-codec org.postgresql:postgresql ")
	require.NoError(t, err)
	assert.Equal(t, []string{"org.postgresql:postgresql:42.7.3", "io.netty:netty-codec:4.1.0"}, got)

	all, err := s.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDistinctLibraries(t *testing.T) {
	coords := []string{
		"io.netty:netty-buffer:4.1.0",
		"samples:docker:1.0",
		"org.example:library:0.1",
		"io.netty:netty-buffer:4.1.5",
		"noversion",
		":leading",
		"org.postgresql:postgresql:42.7.3",
	}

	got := DistinctLibraries(coords, []string{"samples", "org.example"})
	assert.Equal(t, []entities.Coordinates{
		{Group: "io.netty", Artifact: "netty-buffer"},
		{Group: "org.postgresql", Artifact: "postgresql"},
	}, got)
}
