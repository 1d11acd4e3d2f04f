package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Database.Port != 5432 {
		t.Errorf("database port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.WhatsApp.RetryAttempts != 3 {
		t.Errorf("retry attempts = %d, want 3", cfg.WhatsApp.RetryAttempts)
	}
	if cfg.WhatsApp.RetryDelayMs != 2000 {
		t.Errorf("retry delay = %d, want 2000", cfg.WhatsApp.RetryDelayMs)
	}
	if cfg.WhatsApp.SendDelayMs != 3000 {
		t.Errorf("send delay = %d, want 3000", cfg.WhatsApp.SendDelayMs)
	}
	if cfg.Dispatch.Timezone != "Asia/Jakarta" {
		t.Errorf("timezone = %s, want Asia/Jakarta", cfg.Dispatch.Timezone)
	}
	if cfg.Dispatch.PollSchedule != "* * * * *" {
		t.Errorf("poll schedule = %s, want every minute", cfg.Dispatch.PollSchedule)
	}
	if cfg.Security.BCryptCost != 12 {
		t.Errorf("bcrypt cost = %d, want 12", cfg.Security.BCryptCost)
	}
	if !cfg.Features.DispatchPollerEnabled() {
		t.Error("dispatch poller disabled by default")
	}
	if !cfg.Features.PaymentsEnabled() || !cfg.Features.NotificationsEnabled() {
		t.Error("payments and notifications disabled by default")
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9000
	cfg.WhatsApp.RetryAttempts = 5
	cfg.Dispatch.Timezone = "Asia/Makassar"
	setDefaults(cfg)

	if cfg.Server.Port != 9000 {
		t.Errorf("server port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.WhatsApp.RetryAttempts != 5 {
		t.Errorf("retry attempts = %d, want 5", cfg.WhatsApp.RetryAttempts)
	}
	if cfg.Dispatch.Timezone != "Asia/Makassar" {
		t.Errorf("timezone = %s, want Asia/Makassar", cfg.Dispatch.Timezone)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	configYAML := `
server:
  port: 9090
whatsapp:
  base_url: http://waha:3000
  session: toko
  send_delay_ms: 5000
dispatch:
  timezone: Asia/Jakarta
  poll_schedule: "*/5 * * * *"
`
	if err := os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		os.Chdir(oldWD)
		AppConfig = nil
	}()

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	cfg := GetConfig()
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.WhatsApp.BaseURL != "http://waha:3000" {
		t.Errorf("base url = %s", cfg.WhatsApp.BaseURL)
	}
	if cfg.WhatsApp.Session != "toko" {
		t.Errorf("session = %s, want toko", cfg.WhatsApp.Session)
	}
	if cfg.WhatsApp.SendDelayMs != 5000 {
		t.Errorf("send delay = %d, want 5000", cfg.WhatsApp.SendDelayMs)
	}
	if cfg.Dispatch.PollSchedule != "*/5 * * * *" {
		t.Errorf("poll schedule = %s", cfg.Dispatch.PollSchedule)
	}
	// Defaults still fill the gaps
	if cfg.Database.Port != 5432 {
		t.Errorf("database port = %d, want 5432", cfg.Database.Port)
	}
}

func TestLoadConfigHonorsDisabledFeatures(t *testing.T) {
	dir := t.TempDir()
	configYAML := `
features:
  enable_dispatch_poller: false
  enable_payments: false
`
	if err := os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		os.Chdir(oldWD)
		AppConfig = nil
	}()

	if err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	cfg := GetConfig()
	if cfg.Features.DispatchPollerEnabled() {
		t.Error("enable_dispatch_poller: false ignored")
	}
	if cfg.Features.PaymentsEnabled() {
		t.Error("enable_payments: false ignored")
	}
	// An absent key still defaults to enabled
	if !cfg.Features.NotificationsEnabled() {
		t.Error("absent enable_notifications should default to enabled")
	}
}
