package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ochairo/tckwatch/internal/domain/services"
	"github.com/ochairo/tckwatch/internal/external-adapters/jsonindex"
	"github.com/spf13/pflag"
)

func runList(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	var (
		filter     = fs.String("coordinates", "all", "Space separated coordinate filters (group[:artifact[:version]], k/n or all)")
		jsonOutput = fs.Bool("json", false, "Output as a JSON array")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch list [options]

List the coordinates selected by a filter, one per line.

Options:
`)
		fs.PrintDefaults()
	}
	parseFlags(fs, args)

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	coordinates, err := services.NewCoordinateSelector(jsonindex.NewIndexRepository(cfg.MetadataDir)).Resolve(ctx, *filter)
	if err != nil {
		fatalf("Error listing coordinates: %v", err)
	}

	if *jsonOutput {
		if coordinates == nil {
			coordinates = []string{}
		}
		if err := json.NewEncoder(os.Stdout).Encode(coordinates); err != nil {
			fatalf("Error encoding JSON: %v", err)
		}
		return
	}
	for _, c := range coordinates {
		fmt.Println(c)
	}
}
