package entities

import "time"

// Config holds the tool settings after file, environment and defaults are merged
type Config struct {
	MetadataDir            string
	TestsDir               string
	Maven                  MavenConfig
	OSV                    OSVConfig
	Concurrency            int
	InfrastructurePrefixes []string
	Constraints            map[string]string // library -> semver constraint candidates must satisfy
	LogLevel               string
}

// MavenConfig configures access to the Maven repository
type MavenConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// OSVConfig configures the vulnerability database
type OSVConfig struct {
	APIURL  string
	Timeout time.Duration
}
