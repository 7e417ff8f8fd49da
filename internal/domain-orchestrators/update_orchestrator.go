// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"time"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/services"
	"golang.org/x/sync/errgroup"
)

// NewerVersionSource computes the untested upstream versions of one library
type NewerVersionSource interface {
	FindNewerVersions(ctx context.Context, library entities.Coordinates) ([]string, error)
}

// UpdateOrchestrator finds newer upstream versions for every tested library
type UpdateOrchestrator struct {
	source                 NewerVersionSource
	concurrency            int
	infrastructurePrefixes []string
	logger                 interfaces.Logger
}

// UpdateOrchestratorConfig holds configuration for the orchestrator
type UpdateOrchestratorConfig struct {
	Concurrency            int
	InfrastructurePrefixes []string
}

// NewUpdateOrchestrator creates a new update orchestrator
func NewUpdateOrchestrator(source NewerVersionSource, config UpdateOrchestratorConfig, logger interfaces.Logger) *UpdateOrchestrator {
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &UpdateOrchestrator{
		source:                 source,
		concurrency:            concurrency,
		infrastructurePrefixes: config.InfrastructurePrefixes,
		logger:                 logger,
	}
}

// UpdateResult contains the outcome of one run
type UpdateResult struct {
	Updates   []entities.LibraryUpdate
	Libraries int
	Duration  time.Duration
}

// FetchNewerVersions reduces coordinates to libraries and looks up their newer versions.
// Libraries run concurrently but the result keeps the input order; the first failure
// cancels the remaining lookups and is returned.
func (o *UpdateOrchestrator) FetchNewerVersions(ctx context.Context, coordinates []string) (*UpdateResult, error) {
	start := time.Now()
	libraries := services.DistinctLibraries(coordinates, o.infrastructurePrefixes)
	o.logger.Info("checking libraries for newer versions",
		interfaces.F("libraries", len(libraries)),
		interfaces.F("concurrency", o.concurrency))

	found := make([][]string, len(libraries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, library := range libraries {
		g.Go(func() error {
			versions, err := o.source.FindNewerVersions(ctx, library)
			if err != nil {
				return err
			}
			found[i] = versions
			if len(versions) > 0 {
				o.logger.Debug("newer versions found",
					interfaces.F("library", library.Module()),
					interfaces.F("versions", versions))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	updates := make([]entities.LibraryUpdate, 0)
	for i, library := range libraries {
		if len(found[i]) > 0 {
			updates = append(updates, entities.LibraryUpdate{Name: library.Module(), Versions: found[i]})
		}
	}

	result := &UpdateResult{
		Updates:   updates,
		Libraries: len(libraries),
		Duration:  time.Since(start),
	}
	o.logger.Info("newer versions computed",
		interfaces.F("libraries_with_updates", len(result.Updates)),
		interfaces.F("duration", result.Duration.String()))
	return result, nil
}
