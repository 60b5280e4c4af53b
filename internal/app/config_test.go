package app

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Storage.Bucket = "speech-bucket"
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Storage.KeyPrefix != "files" {
		t.Errorf("key prefix = %q, want files", cfg.Storage.KeyPrefix)
	}
	if cfg.Corpus.Path != "corpus.db" {
		t.Errorf("corpus path = %q, want corpus.db", cfg.Corpus.Path)
	}
	if cfg.Corpus.MigrationsDir != "migrations" {
		t.Errorf("migrations dir = %q, want migrations", cfg.Corpus.MigrationsDir)
	}
	if len(cfg.Corpus.SourceURLs) != len(defaultSourceURLs) {
		t.Fatalf("source urls = %v, want defaults", cfg.Corpus.SourceURLs)
	}
	for i, u := range defaultSourceURLs {
		if cfg.Corpus.SourceURLs[i] != u {
			t.Errorf("source url %d = %q, want %q", i, cfg.Corpus.SourceURLs[i], u)
		}
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.KeyPrefix = "recordings"
	cfg.Corpus.Path = "/var/lib/bot/corpus.db"
	cfg.Corpus.SourceURLs = []string{"http://example.com/vocs/1/"}

	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Storage.KeyPrefix != "recordings" {
		t.Errorf("key prefix overwritten: %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Corpus.Path != "/var/lib/bot/corpus.db" {
		t.Errorf("corpus path overwritten: %q", cfg.Corpus.Path)
	}
	if len(cfg.Corpus.SourceURLs) != 1 || cfg.Corpus.SourceURLs[0] != "http://example.com/vocs/1/" {
		t.Errorf("source urls overwritten: %v", cfg.Corpus.SourceURLs)
	}
}

func TestNormalizeRequiresBucket(t *testing.T) {
	cfg := &Config{}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "storage.bucket") {
		t.Fatalf("err = %v, want storage.bucket requirement", err)
	}
}

func TestNormalizeRejectsBlankSourceURL(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.SourceURLs = []string{"http://example.com/vocs/1/", "  "}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected an error for a blank source url")
	}
}
