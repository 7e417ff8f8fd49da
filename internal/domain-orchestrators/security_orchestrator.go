package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
	"golang.org/x/sync/errgroup"
)

// checksumExtensions are tried in order; Maven Central always publishes .sha1
var checksumExtensions = []string{"sha512", "sha256", "sha1"}

// SecurityOrchestrator verifies and scans library releases
type SecurityOrchestrator struct {
	maven       gateways.MavenGateway
	checksum    gateways.ChecksumVerifier
	signature   gateways.SignatureVerifier
	vulns       gateways.VulnerabilityGateway
	concurrency int
	logger      interfaces.Logger
}

// NewSecurityOrchestrator creates a new security orchestrator. signature and vulns may be nil
// when the caller only verifies checksums.
func NewSecurityOrchestrator(
	maven gateways.MavenGateway,
	checksum gateways.ChecksumVerifier,
	signature gateways.SignatureVerifier,
	vulns gateways.VulnerabilityGateway,
	concurrency int,
	logger interfaces.Logger,
) *SecurityOrchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &SecurityOrchestrator{
		maven:       maven,
		checksum:    checksum,
		signature:   signature,
		vulns:       vulns,
		concurrency: concurrency,
		logger:      logger,
	}
}

// VerifyResult describes the checks performed on one release POM
type VerifyResult struct {
	Release           entities.Coordinates
	ChecksumAlgorithm string
	SignatureChecked  bool
}

// VerifyRelease downloads the POM of release into workDir and checks its published digest.
// The detached .asc signature is checked too when keys were imported.
func (o *SecurityOrchestrator) VerifyRelease(ctx context.Context, release entities.Coordinates, workDir string) (*VerifyResult, error) {
	return o.VerifyReleaseWithSignature(ctx, release, workDir, "")
}

// VerifyReleaseWithSignature is VerifyRelease with the detached signature read from sigPath.
// An empty sigPath fetches the published .pom.asc.
func (o *SecurityOrchestrator) VerifyReleaseWithSignature(ctx context.Context, release entities.Coordinates, workDir, sigPath string) (*VerifyResult, error) {
	pom := entities.MavenArtifact{Coordinates: release, Extension: "pom"}
	path := filepath.Join(workDir, pom.FileName())
	if err := o.maven.DownloadArtifact(ctx, pom, path); err != nil {
		return nil, err
	}
	//nolint:errcheck // best-effort cleanup of a scratch file
	defer os.Remove(path)

	result := &VerifyResult{Release: release}

	var lastErr error
	for _, ext := range checksumExtensions {
		sum, err := o.maven.FetchArtifactChecksum(ctx, pom, ext)
		if err != nil {
			lastErr = err
			continue
		}
		if err := o.checksum.VerifyChecksum(ctx, path, sum); err != nil {
			return nil, fmt.Errorf("%s: %w", pom.FileName(), err)
		}
		result.ChecksumAlgorithm = ext
		break
	}
	if result.ChecksumAlgorithm == "" {
		return nil, fmt.Errorf("no checksum published for %s: %w", pom.FileName(), lastErr)
	}

	if sigPath != "" && (o.signature == nil || o.signature.GetKeyringSize() == 0) {
		return nil, errors.New("signature file given but no keys imported")
	}
	if o.signature != nil && o.signature.GetKeyringSize() > 0 {
		var err error
		if sigPath != "" {
			err = o.signature.VerifyGPGSignatureFromFile(path, sigPath)
		} else {
			sig := entities.MavenArtifact{Coordinates: release, Extension: "pom.asc"}
			err = o.signature.VerifyGPGSignature(ctx, path, o.maven.ArtifactURL(sig))
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pom.FileName(), err)
		}
		result.SignatureChecked = true
	}

	o.logger.Info("release verified",
		interfaces.F("release", release.String()),
		interfaces.F("checksum", result.ChecksumAlgorithm),
		interfaces.F("signature", result.SignatureChecked))
	return result, nil
}

// ScanUpdates looks up vulnerabilities of every candidate version, keeping input order
func (o *SecurityOrchestrator) ScanUpdates(ctx context.Context, updates []entities.LibraryUpdate) ([]*entities.SecurityReport, error) {
	if o.vulns == nil {
		return nil, fmt.Errorf("no vulnerability database configured")
	}

	var releases []entities.Coordinates
	for _, u := range updates {
		library, err := entities.ParseModule(u.Name)
		if err != nil {
			return nil, err
		}
		for _, v := range u.Versions {
			releases = append(releases, library.WithVersion(v))
		}
	}

	reports := make([]*entities.SecurityReport, len(releases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, release := range releases {
		g.Go(func() error {
			report, err := o.vulns.ScanWithOSV(ctx, release)
			if err != nil {
				return fmt.Errorf("vulnerability scan of %s failed: %w", release, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// GetHighSeverityVulnerabilities returns vulnerabilities of HIGH or CRITICAL severity
func (o *SecurityOrchestrator) GetHighSeverityVulnerabilities(report *entities.SecurityReport) []entities.Vulnerability {
	var high []entities.Vulnerability
	for _, v := range report.Vulnerabilities {
		if v.Severity == "HIGH" || v.Severity == "CRITICAL" {
			high = append(high, v)
		}
	}
	return high
}

// GetSecuritySummary renders one line per release followed by its vulnerabilities
func (o *SecurityOrchestrator) GetSecuritySummary(reports []*entities.SecurityReport) string {
	var b strings.Builder
	for _, r := range reports {
		if !r.HasVulnerabilities() {
			fmt.Fprintf(&b, "✅ %s: no known vulnerabilities\n", r.Release)
			continue
		}
		fmt.Fprintf(&b, "⚠️  %s: %d vulnerabilities (%d high or critical)\n",
			r.Release, len(r.Vulnerabilities), len(o.GetHighSeverityVulnerabilities(r)))
		for _, v := range r.Vulnerabilities {
			line := fmt.Sprintf("   %s [%s] %s", v.ID, v.Severity, v.Description)
			if v.FixedIn != "" {
				line += " (fixed in " + v.FixedIn + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
