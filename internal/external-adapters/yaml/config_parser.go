// Package yaml provides YAML-based configuration parsing and report encoding.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/ochairo/tckwatch/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given; it may be absent
const DefaultConfigFile = "tckwatch.yml"

// yamlConfig represents the raw YAML structure.
// env tags are applied after the file is decoded and win over file values.
type yamlConfig struct {
	MetadataDir            string            `yaml:"metadata_dir" env:"TCK_METADATA_DIR"`
	TestsDir               string            `yaml:"tests_dir" env:"TCK_TESTS_DIR"`
	Maven                  yamlMaven         `yaml:"maven"`
	OSV                    yamlOSV           `yaml:"osv"`
	Concurrency            int               `yaml:"concurrency" env:"TCK_CONCURRENCY"`
	InfrastructurePrefixes []string          `yaml:"infrastructure_prefixes" env:"TCK_INFRASTRUCTURE_PREFIXES"`
	Constraints            map[string]string `yaml:"constraints"`
	LogLevel               string            `yaml:"log_level" env:"TCK_LOG_LEVEL"`
}

type yamlMaven struct {
	BaseURL    string        `yaml:"base_url" env:"TCK_MAVEN_BASE_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"TCK_MAVEN_TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"TCK_MAVEN_MAX_RETRIES"`
}

type yamlOSV struct {
	APIURL  string        `yaml:"api_url" env:"TCK_OSV_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TCK_OSV_TIMEOUT"`
}

// defaults is the starting point the file and the environment are decoded over,
// so explicit zero values in either survive.
func defaults() yamlConfig {
	return yamlConfig{
		MetadataDir: "metadata",
		TestsDir:    "tests/src",
		Maven: yamlMaven{
			BaseURL:    "https://repo1.maven.org/maven2",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		OSV: yamlOSV{
			APIURL:  "https://api.osv.dev/v1/query",
			Timeout: 30 * time.Second,
		},
		Concurrency:            4,
		InfrastructurePrefixes: []string{"samples", "org.example"},
		LogLevel:               "info",
	}
}

// ConfigParser parses tckwatch configuration files
type ConfigParser struct{}

// NewConfigParser creates a new YAML config parser
func NewConfigParser() *ConfigParser {
	return &ConfigParser{}
}

// ParseFile parses a config file. A missing DefaultConfigFile is not an error;
// a missing file that was asked for explicitly is.
func (p *ConfigParser) ParseFile(filePath string) (*entities.Config, error) {
	if filePath == "" {
		filePath = DefaultConfigFile
		//nolint:gosec // G304: config path is chosen by the operator
		data, err := os.ReadFile(filePath)
		if errors.Is(err, fs.ErrNotExist) {
			return p.Parse(nil)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
		return p.Parse(data)
	}

	//nolint:gosec // G304: config path is chosen by the operator
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return p.Parse(data)
}

// Parse parses YAML bytes, applies environment overrides and defaults
func (p *ConfigParser) Parse(data []byte) (*entities.Config, error) {
	raw := defaults()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cleanenv.ReadEnv(&raw); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	return convertConfig(raw), nil
}

func validate(raw *yamlConfig) error {
	if raw.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", raw.Concurrency)
	}
	if raw.Maven.MaxRetries < 0 {
		return fmt.Errorf("maven.max_retries must not be negative")
	}
	if !strings.HasPrefix(raw.Maven.BaseURL, "http://") && !strings.HasPrefix(raw.Maven.BaseURL, "https://") {
		return fmt.Errorf("maven.base_url must be an http(s) URL: %s", raw.Maven.BaseURL)
	}
	for lib := range raw.Constraints {
		if _, err := entities.ParseModule(lib); err != nil {
			return fmt.Errorf("invalid constraint key: %w", err)
		}
	}
	switch raw.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %s", raw.LogLevel)
	}
	return nil
}

func convertConfig(raw yamlConfig) *entities.Config {
	return &entities.Config{
		MetadataDir: raw.MetadataDir,
		TestsDir:    raw.TestsDir,
		Maven: entities.MavenConfig{
			BaseURL:    strings.TrimSuffix(raw.Maven.BaseURL, "/"),
			Timeout:    raw.Maven.Timeout,
			MaxRetries: raw.Maven.MaxRetries,
		},
		OSV: entities.OSVConfig{
			APIURL:  raw.OSV.APIURL,
			Timeout: raw.OSV.Timeout,
		},
		Concurrency:            raw.Concurrency,
		InfrastructurePrefixes: raw.InfrastructurePrefixes,
		Constraints:            raw.Constraints,
		LogLevel:               raw.LogLevel,
	}
}
