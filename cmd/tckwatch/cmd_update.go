package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/services"
	"github.com/ochairo/tckwatch/internal/external-adapters/jsonindex"
	"github.com/spf13/pflag"
)

func runUpdateTestedVersion(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("update-tested-version", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	var (
		coordinates   = fs.String("coordinates", "", "Coordinates of the newly tested release (group:artifact:version)")
		lastSupported = fs.String("last-supported-version", "", "Last version of the library that passed tests")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch update-tested-version --coordinates <g:a:v> --last-supported-version <version>

Add a newly tested version to every index entry that already tests the last
supported version. A stable release replaces the tested pre-releases of the same
base version and promotes a pre-release metadata directory to the release.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tckwatch update-tested-version --coordinates org.hibernate.orm:hibernate-core:7.0.0.Final --last-supported-version 7.0.0.CR1
`)
	}
	parseFlags(fs, args)

	if *coordinates == "" || *lastSupported == "" {
		fs.Usage()
		os.Exit(1)
	}

	release, err := entities.ParseCoordinates(*coordinates)
	if err != nil {
		fatalf("Error: %v", err)
	}

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	repo := jsonindex.NewIndexRepository(cfg.MetadataDir)
	updater := services.NewTestedVersionUpdater(repo, cfg.MetadataDir, cfg.TestsDir, logger)

	result, err := updater.AddTestedVersion(ctx, release, *lastSupported)
	if err != nil {
		fatalf("Error updating %s: %v", repo.IndexPath(release), err)
	}

	if !result.Changed() {
		fatalf("Error: no entry of %s tests version %s", repo.IndexPath(release), *lastSupported)
	}

	fmt.Printf("✅ %s: added %s to %d entr%s\n", release.Module(), release.Version, result.UpdatedEntries, plural(result.UpdatedEntries, "y", "ies"))
	for _, v := range result.RemovedPreReleases {
		fmt.Printf("   removed pre-release %s\n", v)
	}
	olds := make([]string, 0, len(result.Promoted))
	for old := range result.Promoted {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		fmt.Printf("   metadata-version %s -> %s\n", old, result.Promoted[old])
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
