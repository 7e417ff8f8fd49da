package entities

// SecurityReport is the result of a vulnerability lookup for one library release
type SecurityReport struct {
	Coordinates     Coordinates     `json:"-" yaml:"-"`
	Release         string          `json:"release" yaml:"release"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities" yaml:"vulnerabilities"`
	ScanDate        string          `json:"scan_date" yaml:"scan_date"`
	Metadata        ScanMetadata    `json:"metadata" yaml:"metadata"`
}

// Vulnerability represents a single security vulnerability
type Vulnerability struct {
	ID          string   `json:"id" yaml:"id"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Severity    string   `json:"severity" yaml:"severity"` // CRITICAL, HIGH, MEDIUM, LOW, UNKNOWN
	Description string   `json:"description" yaml:"description"`
	FixedIn     string   `json:"fixed_in,omitempty" yaml:"fixed_in,omitempty"`
}

// ScanMetadata contains information about the scan execution
type ScanMetadata struct {
	Scanner        string `json:"scanner" yaml:"scanner"`
	ScannerVersion string `json:"scanner_version" yaml:"scanner_version"`
}

// HasVulnerabilities reports whether the scan found anything
func (r *SecurityReport) HasVulnerabilities() bool {
	return len(r.Vulnerabilities) > 0
}
