package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terratensor/pdfredact/internal/errs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AWS_REGION", "UNIDOC_LICENSE_API_KEY", "PDFREDACT_OUTPUT"} {
		t.Setenv(k, "")
	}
	// godotenv.Load читает .env из рабочего каталога.
	t.Chdir(t.TempDir())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdfredact.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ap-southeast-1", cfg.AWS.Region)
	assert.Equal(t, 3, cfg.AWS.MaxAttempts)
	assert.Equal(t, "redacted_document.pdf", cfg.Output.Path)
	assert.Equal(t, 5*time.Second, cfg.Textract.PollInterval)
	assert.Zero(t, cfg.Textract.MaxPolls)
	assert.Equal(t, "en", cfg.PII.Language)
	assert.Equal(t, "substring", cfg.Matching.Mode)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
aws:
  region: eu-west-1
source:
  bucket: bucketname
  key: subfoldername/documentFilename
output:
  path: s3://out/redacted.pdf
textract:
  poll_interval: 2s
  max_polls: 60
pii:
  language: es
  min_score: 0.8
  categories: [NAME, SSN]
matching:
  mode: positional
unidoc:
  license_key: yaml-key
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "bucketname", cfg.Location().Bucket)
	assert.Equal(t, "subfoldername/documentFilename", cfg.Location().Key)
	assert.Equal(t, "s3://out/redacted.pdf", cfg.Output.Path)
	assert.Equal(t, 2*time.Second, cfg.Textract.PollInterval)
	assert.Equal(t, 60, cfg.Textract.MaxPolls)
	assert.Equal(t, []string{"NAME", "SSN"}, cfg.PII.Categories)
	assert.Equal(t, "positional", cfg.Matching.Mode)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "yaml-key", cfg.Unidoc.LicenseKey)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "aws: [unterminated")

	_, err := Load(path)
	assert.True(t, errors.Is(err, errs.ErrConfig))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("UNIDOC_LICENSE_API_KEY", "key-123")
	t.Setenv("PDFREDACT_OUTPUT", "/tmp/out.pdf")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "key-123", cfg.Unidoc.LicenseKey)
	assert.Equal(t, "/tmp/out.pdf", cfg.Output.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
aws:
  region: eu-west-1
output:
  path: from-file.pdf
unidoc:
  license_key: file-key
`)
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("UNIDOC_LICENSE_API_KEY", "env-key")
	t.Setenv("PDFREDACT_OUTPUT", "from-env.pdf")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Equal(t, "env-key", cfg.Unidoc.LicenseKey)
	assert.Equal(t, "from-env.pdf", cfg.Output.Path)
}

func TestFileUsedWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
aws:
  region: eu-west-1
output:
  path: from-file.pdf
unidoc:
  license_key: file-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Equal(t, "file-key", cfg.Unidoc.LicenseKey)
	assert.Equal(t, "from-file.pdf", cfg.Output.Path)
}

func TestSetSource(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.SetSource("s3://bucketname/subfoldername/doc.pdf"))
	assert.Equal(t, "bucketname", cfg.Source.Bucket)
	assert.Equal(t, "subfoldername/doc.pdf", cfg.Source.Key)

	assert.True(t, errors.Is(cfg.SetSource("doc.pdf"), errs.ErrConfig))
}

func TestValidateFailures(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Source: SourceConfig{Bucket: "b", Key: "k.pdf"},
			Unidoc: UnidocConfig{LicenseKey: "key"},
		}
		applyDefaults(cfg)
		return cfg
	}
	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing bucket", func(c *Config) { c.Source.Bucket = "" }, "source.bucket"},
		{"missing key", func(c *Config) { c.Source.Key = "" }, "source.key"},
		{"negative interval", func(c *Config) { c.Textract.PollInterval = -time.Second }, "poll_interval"},
		{"negative polls", func(c *Config) { c.Textract.MaxPolls = -1 }, "max_polls"},
		{"bad score", func(c *Config) { c.PII.MinScore = 1.5 }, "min_score"},
		{"unsupported language", func(c *Config) { c.PII.Language = "de" }, "not supported"},
		{"garbage language", func(c *Config) { c.PII.Language = "!!" }, "pii.language"},
		{"bad mode", func(c *Config) { c.Matching.Mode = "fuzzy" }, "matching.mode"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"missing license", func(c *Config) { c.Unidoc.LicenseKey = "" }, "unidoc.license_key"},
		{"zero attempts", func(c *Config) { c.AWS.MaxAttempts = -1 }, "max_attempts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrConfig))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLanguageCode(t *testing.T) {
	cfg := &Config{PII: PIIConfig{Language: "en-US"}}
	require.NoError(t, validateLanguage(cfg.PII.Language))
	assert.Equal(t, "en", cfg.LanguageCode())
}
