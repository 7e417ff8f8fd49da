package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ochairo/tckwatch/internal/domain/entities"
)

// osvEcosystem is the OSV ecosystem name for Maven Central packages
const osvEcosystem = "Maven"

// osvGateway implements vulnerability lookups using the OSV HTTP API
type osvGateway struct {
	apiURL     string
	httpClient *http.Client
}

// NewOSVGateway creates a new OSV gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewOSVGateway(cfg entities.OSVConfig) *osvGateway {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.osv.dev/v1/query"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &osvGateway{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ScanWithOSV queries OSV for vulnerabilities affecting one library release
func (g *osvGateway) ScanWithOSV(ctx context.Context, release entities.Coordinates) (*entities.SecurityReport, error) {
	payload := OSVQueryRequest{
		Package: OSVPackage{
			Name:      release.Module(),
			Ecosystem: osvEcosystem,
		},
		Version: release.Version,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OSV API request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	report := &entities.SecurityReport{
		Coordinates:     release,
		Release:         release.String(),
		Vulnerabilities: []entities.Vulnerability{},
		ScanDate:        time.Now().UTC().Format(time.RFC3339),
		Metadata: entities.ScanMetadata{
			Scanner:        "OSV API",
			ScannerVersion: "v1",
		},
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return report, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("OSV API error %d", resp.StatusCode)
	}

	var osvResp OSVQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&osvResp); err != nil {
		return nil, fmt.Errorf("failed to parse OSV response: %w", err)
	}

	for _, vuln := range osvResp.Vulns {
		report.Vulnerabilities = append(report.Vulnerabilities, entities.Vulnerability{
			ID:          vuln.ID,
			Aliases:     vuln.Aliases,
			Severity:    g.extractSeverity(vuln),
			Description: vuln.Summary,
			FixedIn:     g.extractFixedIn(vuln, release.Module()),
		})
	}

	return report, nil
}

// extractSeverity prefers the advisory database rating; OSV score vectors are not parsed
func (g *osvGateway) extractSeverity(vuln OSVVulnerability) string {
	if s, ok := vuln.DatabaseSpecific["severity"].(string); ok && s != "" {
		s = strings.ToUpper(s)
		if s == "MODERATE" {
			return "MEDIUM"
		}
		return s
	}
	return "UNKNOWN"
}

// extractFixedIn returns the first "fixed" event recorded for the package
func (g *osvGateway) extractFixedIn(vuln OSVVulnerability, name string) string {
	for _, affected := range vuln.Affected {
		if affected.Package.Name != name {
			continue
		}
		for _, r := range affected.Ranges {
			for _, e := range r.Events {
				if e.Fixed != "" {
					return e.Fixed
				}
			}
		}
	}
	return ""
}

// OSV API request/response types

// OSVQueryRequest represents a query to the OSV API for vulnerability information.
type OSVQueryRequest struct {
	Package OSVPackage `json:"package"`
	Version string     `json:"version"`
}

// OSVPackage identifies a software package in a specific ecosystem.
type OSVPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

// OSVQueryResponse contains the vulnerability results from the OSV API.
type OSVQueryResponse struct {
	Vulns []OSVVulnerability `json:"vulns"`
}

// OSVVulnerability represents a single vulnerability from the OSV database.
type OSVVulnerability struct {
	ID               string         `json:"id"`
	Summary          string         `json:"summary"`
	Details          string         `json:"details"`
	Aliases          []string       `json:"aliases,omitempty"`
	Severity         []OSVSeverity  `json:"severity,omitempty"`
	Affected         []OSVAffected  `json:"affected,omitempty"`
	DatabaseSpecific map[string]any `json:"database_specific,omitempty"`
}

// OSVSeverity contains severity scoring information for a vulnerability.
type OSVSeverity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

// OSVAffected lists the affected ranges of one package.
type OSVAffected struct {
	Package OSVPackage `json:"package"`
	Ranges  []OSVRange `json:"ranges,omitempty"`
}

// OSVRange is a list of introduced/fixed events.
type OSVRange struct {
	Type   string     `json:"type"`
	Events []OSVEvent `json:"events"`
}

// OSVEvent marks where a vulnerability was introduced or fixed.
type OSVEvent struct {
	Introduced string `json:"introduced,omitempty"`
	Fixed      string `json:"fixed,omitempty"`
}
