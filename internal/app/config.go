package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/tatlingua/speechbot/core/config"
)

// Default corpus sources: the vocabulary pages the original research corpus
// was collected from.
var defaultSourceURLs = []string{
	"http://klavogonki.ru/vocs/141412/",
	"http://klavogonki.ru/vocs/12726/",
}

// StorageConfig holds object storage settings for uploaded recordings.
type StorageConfig struct {
	Bucket string `yaml:"bucket" envconfig:"STORAGE_BUCKET"`
	Region string `yaml:"region" envconfig:"STORAGE_REGION"`
	// Endpoint overrides the S3 endpoint for MinIO and other S3-compatible
	// stores; leave empty for AWS.
	Endpoint     string `yaml:"endpoint" envconfig:"STORAGE_ENDPOINT"`
	UsePathStyle bool   `yaml:"use_path_style" envconfig:"STORAGE_USE_PATH_STYLE"`
	KeyPrefix    string `yaml:"key_prefix" envconfig:"STORAGE_KEY_PREFIX"`
}

// CorpusConfig holds settings for the local passage corpus.
type CorpusConfig struct {
	Path          string   `yaml:"path" envconfig:"CORPUS_PATH"`
	MigrationsDir string   `yaml:"migrations_dir" envconfig:"CORPUS_MIGRATIONS_DIR"`
	SourceURLs    []string `yaml:"source_urls" envconfig:"CORPUS_SOURCE_URLS"`
}

// Config aggregates the core bot configuration with this bot's own sections.
type Config struct {
	Core    coreconfig.Config `yaml:",inline"`
	Storage StorageConfig     `yaml:"storage"`
	Corpus  CorpusConfig      `yaml:"corpus"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required app-level fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Storage.Bucket) == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "files"
	}

	if strings.TrimSpace(cfg.Corpus.Path) == "" {
		cfg.Corpus.Path = "corpus.db"
	}
	if strings.TrimSpace(cfg.Corpus.MigrationsDir) == "" {
		cfg.Corpus.MigrationsDir = "migrations"
	}
	if len(cfg.Corpus.SourceURLs) == 0 {
		cfg.Corpus.SourceURLs = append([]string(nil), defaultSourceURLs...)
	}
	for _, u := range cfg.Corpus.SourceURLs {
		if strings.TrimSpace(u) == "" {
			return fmt.Errorf("corpus.source_urls must not contain empty entries")
		}
	}
	return nil
}
