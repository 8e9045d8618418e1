package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/terratensor/pdfredact/internal/errs"
	"github.com/terratensor/pdfredact/internal/matcher"
	"github.com/terratensor/pdfredact/internal/storage"
)

// Config описывает один запуск редактирования.
type Config struct {
	AWS      AWSConfig      `yaml:"aws"`
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Textract TextractConfig `yaml:"textract"`
	PII      PIIConfig      `yaml:"pii"`
	Matching MatchingConfig `yaml:"matching"`
	Unidoc   UnidocConfig   `yaml:"unidoc"`
	Log      LogConfig      `yaml:"log"`
}

type AWSConfig struct {
	Region      string `yaml:"region"`
	MaxAttempts int    `yaml:"max_attempts"` // попытки SDK на один вызов
}

type SourceConfig struct {
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

type OutputConfig struct {
	Path string `yaml:"path"` // локальный путь или s3://bucket/key
}

type TextractConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"` // 0 - ждать бесконечно
	JobTag       string        `yaml:"job_tag"`
}

type PIIConfig struct {
	Language   string   `yaml:"language"`
	MinScore   float64  `yaml:"min_score"`
	Categories []string `yaml:"categories"`
}

type MatchingConfig struct {
	Mode string `yaml:"mode"` // substring | positional
}

type UnidocConfig struct {
	LicenseKey string `yaml:"license_key"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

const (
	DefaultRegion     = "ap-southeast-1"
	DefaultOutputPath = "redacted_document.pdf"
	DefaultJobTag     = "pdfredact"
)

// Comprehend ищет PII только в текстах на этих языках.
var piiLanguages = []language.Base{
	language.MustParseBase("en"),
	language.MustParseBase("es"),
}

// Load читает .env (если есть), YAML-файл (если указан и существует)
// и переменные окружения, затем проставляет значения по умолчанию.
// Переменные окружения перекрывают значения из файла.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.Config(fmt.Sprintf("parse %s: %v", path, err))
			}
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("AWS_REGION")); v != "" {
		cfg.AWS.Region = v
	}
	if v := strings.TrimSpace(os.Getenv("UNIDOC_LICENSE_API_KEY")); v != "" {
		cfg.Unidoc.LicenseKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PDFREDACT_OUTPUT")); v != "" {
		cfg.Output.Path = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = DefaultRegion
	}
	if cfg.AWS.MaxAttempts == 0 {
		cfg.AWS.MaxAttempts = 3
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Textract.PollInterval == 0 {
		cfg.Textract.PollInterval = 5 * time.Second
	}
	if cfg.Textract.JobTag == "" {
		cfg.Textract.JobTag = DefaultJobTag
	}
	if cfg.PII.Language == "" {
		cfg.PII.Language = "en"
	}
	if cfg.Matching.Mode == "" {
		cfg.Matching.Mode = string(matcher.ModeSubstring)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// SetSource принимает адрес s3://bucket/key.
func (c *Config) SetSource(uri string) error {
	loc, err := storage.ParseLocation(uri)
	if err != nil {
		return errs.Config(err.Error())
	}
	c.Source.Bucket = loc.Bucket
	c.Source.Key = loc.Key
	return nil
}

func (c *Config) Location() storage.Location {
	return storage.Location{Bucket: c.Source.Bucket, Key: c.Source.Key}
}

// Validate возвращает все найденные проблемы одной ошибкой.
func (c *Config) Validate() error {
	var problems []string
	if c.Source.Bucket == "" {
		problems = append(problems, "source.bucket is required")
	}
	if c.Source.Key == "" {
		problems = append(problems, "source.key is required")
	}
	if c.Output.Path == "" {
		problems = append(problems, "output.path is required")
	}
	if c.AWS.Region == "" {
		problems = append(problems, "aws.region is required")
	}
	if c.Unidoc.LicenseKey == "" {
		problems = append(problems, "unidoc.license_key (or UNIDOC_LICENSE_API_KEY) is required to write pdf")
	}
	if c.AWS.MaxAttempts < 1 {
		problems = append(problems, "aws.max_attempts must be at least 1")
	}
	if c.Textract.PollInterval <= 0 {
		problems = append(problems, "textract.poll_interval must be positive")
	}
	if c.Textract.MaxPolls < 0 {
		problems = append(problems, "textract.max_polls must not be negative")
	}
	if c.PII.MinScore < 0 || c.PII.MinScore > 1 {
		problems = append(problems, "pii.min_score must be within [0,1]")
	}
	if err := validateLanguage(c.PII.Language); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := matcher.ParseMode(c.Matching.Mode); err != nil {
		problems = append(problems, "matching.mode: "+err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return errs.Config(strings.Join(problems, "; "))
	}
	return nil
}

func validateLanguage(code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return fmt.Errorf("pii.language %q: %v", code, err)
	}
	base, _ := tag.Base()
	for _, b := range piiLanguages {
		if base == b {
			return nil
		}
	}
	return fmt.Errorf("pii.language %q is not supported for pii detection", code)
}

// LanguageCode возвращает код языка в виде, который принимает Comprehend (en, es).
func (c *Config) LanguageCode() string {
	tag, err := language.Parse(c.PII.Language)
	if err != nil {
		return c.PII.Language
	}
	base, _ := tag.Base()
	return base.String()
}
