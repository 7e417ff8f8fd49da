package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ochairo/tckwatch/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tckwatch/internal/domain-orchestrators"
	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/external-adapters/yaml"
	"github.com/spf13/pflag"
)

func runScan(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	var (
		fromFile    = fs.String("from-file", "", "Read releases from fetch-newer-versions JSON output ('-' for stdin)")
		format      = fs.StringP("format", "o", "text", "Output format: text, json or yaml")
		failOnVulns = fs.Bool("fail-on-vulns", false, "Exit with error if vulnerabilities are found")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch scan [options] [group:artifact:version...]

Look up known vulnerabilities of library releases in the OSV database.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tckwatch scan com.h2database:h2:2.1.210
  tckwatch fetch-newer-versions | tckwatch scan --from-file - --fail-on-vulns
`)
	}
	parseFlags(fs, args)

	updates, err := scanTargets(fs.Args(), *fromFile)
	if err != nil {
		fatalf("Error: %v", err)
	}
	if len(updates) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	orch := orchestrators.NewSecurityOrchestrator(nil, nil, nil, gateways.NewOSVGateway(cfg.OSV), cfg.Concurrency, logger)
	reports, err := orch.ScanUpdates(ctx, updates)
	if err != nil {
		fatalf("Error: %v", err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(reports)
	case "yaml":
		err = yaml.EncodeReport(os.Stdout, reports)
	default:
		fmt.Print(orch.GetSecuritySummary(reports))
	}
	if err != nil {
		fatalf("Error writing output: %v", err)
	}

	if *failOnVulns {
		for _, r := range reports {
			if r.HasVulnerabilities() {
				fatalf("Error: vulnerabilities found")
			}
		}
	}
}

// scanTargets merges positional coordinates and a fetch-newer-versions document
func scanTargets(args []string, fromFile string) ([]entities.LibraryUpdate, error) {
	var coords []string
	for _, arg := range args {
		if _, err := entities.ParseCoordinates(arg); err != nil {
			return nil, err
		}
		coords = append(coords, arg)
	}
	updates := entities.GroupUpdates(coords)

	if fromFile == "" {
		return updates, nil
	}

	in := os.Stdin
	if fromFile != "-" {
		//nolint:gosec // G304: file is chosen by the operator
		f, err := os.Open(fromFile)
		if err != nil {
			return nil, err
		}
		//nolint:errcheck // Defer close
		defer f.Close()
		in = f
	}

	var fromDoc []entities.LibraryUpdate
	if err := json.NewDecoder(in).Decode(&fromDoc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fromFile, err)
	}
	return append(updates, fromDoc...), nil
}
