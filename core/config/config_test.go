package config

import (
	"strings"
	"testing"
)

func validLongpoll() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	return cfg
}

func TestNormalizeRequiresToken(t *testing.T) {
	err := Normalize(&Config{})
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("err = %v, want token requirement", err)
	}
}

func TestNormalizeRunModeDefaultsToLongpoll(t *testing.T) {
	cfg := validLongpoll()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validLongpoll()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := validLongpoll()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected an error for webhook mode without url/listen/port")
	}

	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
}

func TestNormalizeValidatesExcludeUpdates(t *testing.T) {
	cfg := validLongpoll()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude[0] = %q, want %q", cfg.RateLimit.ExcludeUpdates[0], UpdateCallback)
	}

	cfg = validLongpoll()
	cfg.RateLimit.ExcludeUpdates = []string{"everything"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected an error for an unknown update type")
	}
}
