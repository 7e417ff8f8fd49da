package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/repositories"
	"github.com/zeebo/errs"
)

// ValidationError is the class of every index validation failure
var ValidationError = errs.Class("validation")

// ValidationReport summarizes one validation run
type ValidationReport struct {
	Valid   []string
	Missing []string
	Failed  map[string][]string
}

// Err returns every failure combined into one error, or nil
func (r ValidationReport) Err() error {
	var group errs.Group
	for _, path := range sortedKeys(r.Failed) {
		for _, f := range r.Failed[path] {
			group.Add(ValidationError.New("%s: %s", path, f))
		}
	}
	return group.Err()
}

// FailureCount returns the number of failures across all libraries
func (r ValidationReport) FailureCount() int {
	n := 0
	for _, failures := range r.Failed {
		n += len(failures)
	}
	return n
}

// IndexValidator checks library index files for schema and semantic errors
type IndexValidator struct {
	index  repositories.IndexRepository
	logger interfaces.Logger
}

// NewIndexValidator creates a validator
func NewIndexValidator(index repositories.IndexRepository, logger interfaces.Logger) *IndexValidator {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &IndexValidator{index: index, logger: logger}
}

// Validate checks the root index and the index file of every library named by coordinates.
// A missing root index is a failure; missing library index files are only reported.
// Schema and tested-version failures of one file are reported together.
func (v *IndexValidator) Validate(ctx context.Context, coordinates []string) ValidationReport {
	report := ValidationReport{Failed: map[string][]string{}}

	root := v.index.RootIndexPath()
	switch err := v.index.ValidateRootSchema(ctx); {
	case errors.Is(err, repositories.ErrIndexNotFound):
		report.fail(v.logger, root, "root index missing")
	case err != nil:
		report.fail(v.logger, root, err.Error())
	default:
		report.Valid = append(report.Valid, root)
		v.logger.Info("valid index", interfaces.F("path", root))
	}

	for _, library := range DistinctLibraries(coordinates, []string{"samples"}) {
		path := v.index.IndexPath(library)

		index, err := v.index.GetIndex(ctx, library)
		if errors.Is(err, repositories.ErrIndexNotFound) {
			v.logger.Warn("file not found", interfaces.F("path", path))
			report.Missing = append(report.Missing, path)
			continue
		}
		if err != nil {
			report.fail(v.logger, path, err.Error())
			continue
		}

		failed := false
		if err := v.index.ValidateSchema(ctx, library); err != nil {
			report.fail(v.logger, path, err.Error())
			failed = true
		}
		for _, f := range CheckTestedVersions(index) {
			report.fail(v.logger, path, f)
			failed = true
		}
		if failed {
			continue
		}

		report.Valid = append(report.Valid, path)
		v.logger.Info("valid index", interfaces.F("path", path))
	}
	return report
}

func (r *ValidationReport) fail(logger interfaces.Logger, path, failure string) {
	r.Failed[path] = append(r.Failed[path], failure)
	logger.Error("invalid index", interfaces.F("path", path), interfaces.F("error", failure))
}

// CheckTestedVersions enforces that every tested version of an entry is lower
// than the next higher metadata-version in the index.
func CheckTestedVersions(index entities.MetadataIndex) []string {
	var metas []string
	for _, e := range index {
		if e.MetadataVersion != "" {
			metas = append(metas, e.MetadataVersion)
		}
	}
	entities.SortVersions(metas)

	var failures []string
	for _, e := range index {
		if e.MetadataVersion == "" {
			continue
		}
		next := nextHigher(metas, e.MetadataVersion)
		if next == "" {
			continue
		}
		for _, tv := range e.TestedVersions {
			if entities.CompareVersions(tv, next) >= 0 {
				failures = append(failures, fmt.Sprintf(
					"tested-versions contains version %s not less than next metadata-version %s (under metadata-version %s)",
					tv, next, e.MetadataVersion))
			}
		}
	}
	return failures
}

// nextHigher returns the first element of sorted strictly greater than v
func nextHigher(sorted []string, v string) string {
	for _, s := range sorted {
		if entities.CompareVersions(s, v) > 0 {
			return s
		}
	}
	return ""
}

// FormatFailures renders failures one per line, sorted by file
func (r ValidationReport) FormatFailures() string {
	var b strings.Builder
	for _, path := range sortedKeys(r.Failed) {
		for _, f := range r.Failed[path] {
			fmt.Fprintf(&b, "%s: %s\n", path, f)
		}
	}
	return b.String()
}
