package yaml

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigParser_Parse_Defaults(t *testing.T) {
	cfg, err := NewConfigParser().Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "metadata", cfg.MetadataDir)
	assert.Equal(t, "tests/src", cfg.TestsDir)
	assert.Equal(t, "https://repo1.maven.org/maven2", cfg.Maven.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Maven.Timeout)
	assert.Equal(t, 3, cfg.Maven.MaxRetries)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, []string{"samples", "org.example"}, cfg.InfrastructurePrefixes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://api.osv.dev/v1/query", cfg.OSV.APIURL)
}

func TestConfigParser_Parse_Valid(t *testing.T) {
	data := []byte(`metadata_dir: /repo/metadata
tests_dir: /repo/tests/src
maven:
  base_url: https://maven.example.com/releases/
  timeout: 5s
  max_retries: 1
concurrency: 8
infrastructure_prefixes:
  - samples
constraints:
  io.netty:netty-all: "< 5.0.0-0"
log_level: debug
`)

	cfg, err := NewConfigParser().Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "/repo/metadata", cfg.MetadataDir)
	assert.Equal(t, "/repo/tests/src", cfg.TestsDir)
	assert.Equal(t, "https://maven.example.com/releases", cfg.Maven.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Maven.Timeout)
	assert.Equal(t, 1, cfg.Maven.MaxRetries)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"samples"}, cfg.InfrastructurePrefixes)
	assert.Equal(t, map[string]string{"io.netty:netty-all": "< 5.0.0-0"}, cfg.Constraints)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigParser_Parse_EnvOverridesFile(t *testing.T) {
	t.Setenv("TCK_METADATA_DIR", "/env/metadata")
	t.Setenv("TCK_CONCURRENCY", "2")

	cfg, err := NewConfigParser().Parse([]byte("metadata_dir: /file/metadata\nconcurrency: 16\n"))
	require.NoError(t, err)

	assert.Equal(t, "/env/metadata", cfg.MetadataDir)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestConfigParser_Parse_ExplicitZeroes(t *testing.T) {
	cfg, err := NewConfigParser().Parse([]byte("maven:\n  max_retries: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Maven.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Maven.Timeout)

	t.Setenv("TCK_MAVEN_MAX_RETRIES", "0")
	cfg, err = NewConfigParser().Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Maven.MaxRetries)
}

func TestConfigParser_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "malformed yaml", data: "metadata_dir: [unclosed"},
		{name: "negative concurrency", data: "concurrency: -1"},
		{name: "zero concurrency", data: "maven:\n  max_retries: 0\nconcurrency: 0"},
		{name: "negative retries", data: "maven:\n  max_retries: -1"},
		{name: "non-http base url", data: "maven:\n  base_url: ftp://example.com"},
		{name: "bad constraint key", data: "constraints:\n  not-a-library: \">1\""},
		{name: "unknown log level", data: "log_level: chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfigParser().Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestConfigParser_ParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tckwatch.yml")
	require.NoError(t, os.WriteFile(path, []byte("concurrency: 3\n"), 0600))

	cfg, err := NewConfigParser().ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency)

	_, err = NewConfigParser().ParseFile(filepath.Join(tmpDir, "missing.yml"))
	assert.Error(t, err)
}

func TestConfigParser_ParseFile_MissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewConfigParser().ParseFile("")
	require.NoError(t, err)
	assert.Equal(t, "metadata", cfg.MetadataDir)
}

func TestEncodeReport(t *testing.T) {
	var buf bytes.Buffer
	report := []struct {
		Name     string   `yaml:"name"`
		Versions []string `yaml:"versions"`
	}{{Name: "g:a", Versions: []string{"1.0", "1.1"}}}

	require.NoError(t, EncodeReport(&buf, report))
	assert.Contains(t, buf.String(), "- name: g:a\n")

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, []any{"1.0", "1.1"}, decoded[0]["versions"])
}
