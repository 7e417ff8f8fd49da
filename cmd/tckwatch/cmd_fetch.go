package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ochairo/tckwatch/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tckwatch/internal/domain-orchestrators"
	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	gatewayifaces "github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
	"github.com/ochairo/tckwatch/internal/domain/services"
	"github.com/ochairo/tckwatch/internal/external-adapters/jsonindex"
	"github.com/ochairo/tckwatch/internal/external-adapters/yaml"
	"github.com/spf13/pflag"
)

func runFetchNewerVersions(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("fetch-newer-versions", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	var (
		filter         = fs.String("coordinates", "all", "Coordinate filter used when no coordinates are given (group[:artifact[:version]], k/n or all)")
		format         = fs.StringP("format", "o", "json", "Output format: json, yaml or text")
		verifyMetadata = fs.Bool("verify-metadata", false, "Check maven-metadata.xml against its published SHA-1")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch fetch-newer-versions [options] [group:artifact:version...]

List upstream versions of tested libraries that are not tested, skipped or
superseded pre-releases yet. Without arguments every library of the metadata
tree selected by --coordinates is checked.

Output (json) is a single line: [{"name":"group:artifact","versions":[...]}]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tckwatch fetch-newer-versions                               # Check every library
  tckwatch fetch-newer-versions io.netty:netty-buffer:4.1.0   # Check one library
  tckwatch fetch-newer-versions --coordinates 1/4 -o text     # First of four batches
`)
	}
	parseFlags(fs, args)

	switch *format {
	case "json", "yaml", "text":
	default:
		fatalf("Error: unknown format %q (want json, yaml or text)", *format)
	}

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	repo := jsonindex.NewIndexRepository(cfg.MetadataDir)
	coordinates := fs.Args()
	if len(coordinates) == 0 {
		var err error
		coordinates, err = services.NewCoordinateSelector(repo).Resolve(ctx, *filter)
		if err != nil {
			fatalf("Error resolving coordinates: %v", err)
		}
	}

	constraints, err := services.NewConstraintSet(cfg.Constraints)
	if err != nil {
		fatalf("Error: %v", err)
	}
	logger.Debug("constraints loaded", interfaces.F("libraries", constraints.Len()))

	var checksum gatewayifaces.ChecksumVerifier
	if *verifyMetadata {
		checksum = gateways.NewChecksumVerifier()
	}

	maven := gateways.NewHTTPMavenGateway(cfg.Maven, logger.Named("maven"))
	finder := services.NewNewerVersionFinder(repo, maven, checksum, constraints, logger.Named("finder"))
	orch := orchestrators.NewUpdateOrchestrator(finder, orchestrators.UpdateOrchestratorConfig{
		Concurrency:            cfg.Concurrency,
		InfrastructurePrefixes: cfg.InfrastructurePrefixes,
	}, logger)

	result, err := orch.FetchNewerVersions(ctx, coordinates)
	if err != nil {
		logger.Error("fetch failed", interfaces.F("error", err))
		fatalf("Error: %v", err)
	}

	if err := writeUpdates(os.Stdout, *format, result.Updates); err != nil {
		fatalf("Error writing output: %v", err)
	}
}

func writeUpdates(w io.Writer, format string, updates []entities.LibraryUpdate) error {
	switch format {
	case "yaml":
		return yaml.EncodeReport(w, updates)
	case "text":
		if len(updates) == 0 {
			_, err := fmt.Fprintln(w, "All tested libraries are up to date.")
			return err
		}
		for _, u := range updates {
			if _, err := fmt.Fprintf(w, "%s: %s\n", u.Name, strings.Join(u.Versions, ", ")); err != nil {
				return err
			}
		}
		return nil
	default:
		// versions are written as extracted, markup included
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(updates)
	}
}
