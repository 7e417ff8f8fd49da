package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ochairo/tckwatch/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/tckwatch/internal/domain-orchestrators"
	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/spf13/pflag"
)

func runVerify(ctx context.Context, args []string) {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	common := addCommonFlags(fs)
	var (
		keyFiles = fs.StringSlice("key-file", nil, "Armored or binary public key file (repeatable)")
		keysURL  = fs.String("keys-url", "", "URL of a KEYS file with the release signing keys")
		sigFile  = fs.String("signature-file", "", "Local detached signature of the POM (single release only)")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: tckwatch verify [options] <group:artifact:version>...

Download the POM of each release and check it against the digest published next
to it (.sha512, .sha256 or .sha1). When signing keys are given the detached
.pom.asc signature is verified too.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  tckwatch verify com.h2database:h2:2.2.224
  tckwatch verify org.apache.commons:commons-lang3:3.14.0 --keys-url https://downloads.apache.org/commons/KEYS
  tckwatch verify com.h2database:h2:2.2.224 --key-file h2.asc --signature-file h2-2.2.224.pom.asc
`)
	}
	parseFlags(fs, args)

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	if *sigFile != "" && fs.NArg() != 1 {
		fatalf("Error: --signature-file needs exactly one release")
	}

	releases := make([]entities.Coordinates, 0, fs.NArg())
	for _, arg := range fs.Args() {
		release, err := entities.ParseCoordinates(arg)
		if err != nil {
			fatalf("Error: %v", err)
		}
		releases = append(releases, release)
	}

	cfg, logger := setup(common)
	//nolint:errcheck // Flush on exit
	defer logger.Sync()

	signature := gateways.NewGPGVerifier()
	for _, path := range *keyFiles {
		if err := signature.ImportGPGKeyFromFile(path); err != nil {
			fatalf("Error importing key %s: %v", path, err)
		}
	}
	if *keysURL != "" {
		if err := signature.ImportGPGKeysFromURL(ctx, *keysURL); err != nil {
			fatalf("Error importing keys: %v", err)
		}
	}
	logger.Debug("keyring loaded", interfaces.F("keys", signature.GetKeyringSize()))

	workDir, err := os.MkdirTemp("", "tckwatch-verify-")
	if err != nil {
		fatalf("Error creating work directory: %v", err)
	}
	//nolint:errcheck // Best-effort cleanup
	defer os.RemoveAll(workDir)

	orch := orchestrators.NewSecurityOrchestrator(
		gateways.NewHTTPMavenGateway(cfg.Maven, logger.Named("maven")),
		gateways.NewChecksumVerifier(),
		signature,
		nil,
		cfg.Concurrency,
		logger,
	)

	failed := 0
	for _, release := range releases {
		result, err := orch.VerifyReleaseWithSignature(ctx, release, workDir, *sigFile)
		if err != nil {
			failed++
			fmt.Printf("❌ %s: %v\n", release, err)
			continue
		}
		sig := "not checked"
		if result.SignatureChecked {
			sig = "valid"
		}
		fmt.Printf("✅ %s: %s checksum valid, signature %s\n", release, result.ChecksumAlgorithm, sig)
	}

	if failed > 0 {
		// os.Exit skips deferred cleanup
		_ = os.RemoveAll(workDir)
		fatalf("Error: %d of %d release(s) failed verification", failed, len(releases))
	}
}
