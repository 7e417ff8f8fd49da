package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "fetch-newer-versions":
		runFetchNewerVersions(ctx, os.Args[2:])
	case "update-tested-version":
		runUpdateTestedVersion(ctx, os.Args[2:])
	case "validate-index":
		runValidateIndex(ctx, os.Args[2:])
	case "list":
		runList(ctx, os.Args[2:])
	case "verify":
		runVerify(ctx, os.Args[2:])
	case "scan":
		runScan(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tckwatch - Metadata and version tracking for library compatibility tests

Usage:
  tckwatch <command> [options]

Commands:
  fetch-newer-versions   List upstream versions of tested libraries that are not tested yet
  update-tested-version  Record a newly tested version in a library index
  validate-index         Validate library index files
  list                   List library coordinates selected by a filter
  verify                 Verify checksums and signatures of released POMs
  scan                   Look up known vulnerabilities of library versions

Use "tckwatch <command> --help" for more information about a command.`)
}
