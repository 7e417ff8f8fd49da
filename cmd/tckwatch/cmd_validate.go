package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/services"
	"github.com/ochairo/tckwatch/internal/external-adapters/jsonindex"
	"github.com/spf13/pflag"
)

func runValidateIndex(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("validate-index", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	filter := fs.String("coordinates", "all", "Space separated coordinate filters (group[:artifact[:version]], k/n or all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch validate-index [options]

Validate the root metadata/index.json and the index.json of every selected
library against their schemas, and check that each tested version is lower
than the next metadata-version. A missing root index is a failure.
All failures are reported before the command fails.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tckwatch validate-index                                  # Every library
  tckwatch validate-index --coordinates "io.netty org.postgresql:postgresql"
  tckwatch validate-index --coordinates 3/16               # One CI batch
`)
	}
	parseFlags(fs, args)

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	repo := jsonindex.NewIndexRepository(cfg.MetadataDir)
	coordinates, err := services.NewCoordinateSelector(repo).Resolve(ctx, *filter)
	if err != nil {
		fatalf("Error resolving coordinates: %v", err)
	}

	report := services.NewIndexValidator(repo, logger).Validate(ctx, coordinates)
	for _, path := range report.Valid {
		fmt.Printf("✅ %s: Valid\n", path)
	}
	for _, path := range report.Missing {
		fmt.Printf("⚠️  %s: File not found\n", path)
	}

	if err := report.Err(); err != nil {
		logger.Debug("validation failed", interfaces.F("error", err))
		fmt.Fprint(os.Stderr, report.FormatFailures())
		fatalf("Error: validation failed with %d problem(s) in %d file(s)", report.FailureCount(), len(report.Failed))
	}
}
