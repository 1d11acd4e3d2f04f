package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Server   ServerConfig   `yaml:"server"`
	Email    EmailConfig    `yaml:"email"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Security SecurityConfig `yaml:"security"`
	Midtrans MidtransConfig `yaml:"midtrans"`
	Features FeatureConfig  `yaml:"features"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	Expiry string `yaml:"expiry"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type EmailConfig struct {
	ResendAPIKey     string `yaml:"resend_api_key"`
	MailerSendAPIKey string `yaml:"mailersend_api_key"`
	FromEmail        string `yaml:"from_email"`
	FromName         string `yaml:"from_name"`
	AdminEmail       string `yaml:"admin_email"`
}

// WhatsAppConfig points at the HTTP messaging gateway (WAHA-compatible API).
type WhatsAppConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	Session       string `yaml:"session"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryDelayMs  int    `yaml:"retry_delay_ms"`
	SendDelayMs   int    `yaml:"send_delay_ms"`
}

type DispatchConfig struct {
	Timezone     string `yaml:"timezone"`
	PollSchedule string `yaml:"poll_schedule"`
}

type SecurityConfig struct {
	BCryptCost int `yaml:"bcrypt_cost"`
}

type MidtransConfig struct {
	ServerKey    string `yaml:"server_key"`
	BaseURL      string `yaml:"base_url"`
	IsProduction bool   `yaml:"is_production"`
}

// FeatureConfig holds the on/off switches. Pointer fields so an explicit
// `false` in YAML is distinguishable from an absent key.
type FeatureConfig struct {
	EnablePayments       *bool `yaml:"enable_payments"`
	EnableDispatchPoller *bool `yaml:"enable_dispatch_poller"`
	EnableNotifications  *bool `yaml:"enable_notifications"`
}

func (f FeatureConfig) PaymentsEnabled() bool {
	return f.EnablePayments == nil || *f.EnablePayments
}

func (f FeatureConfig) DispatchPollerEnabled() bool {
	return f.EnableDispatchPoller == nil || *f.EnableDispatchPoller
}

func (f FeatureConfig) NotificationsEnabled() bool {
	return f.EnableNotifications == nil || *f.EnableNotifications
}

var AppConfig *Config

func LoadConfig() error {
	// Try to find config file in different locations
	configPaths := []string{
		"secret/app.yaml",
		"app.yaml",
		"config/app.yaml",
		"./app.yaml",
	}

	var configPath string
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			configPath = path
			break
		}
	}

	if configPath == "" {
		return fmt.Errorf("config file not found in any of the expected locations: %v", configPaths)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %v", configPath, err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %v", err)
	}

	setDefaults(config)

	AppConfig = config
	return nil
}

func setDefaults(config *Config) {
	// Database defaults
	if config.Database.Host == "" {
		config.Database.Host = "localhost"
	}
	if config.Database.Port == 0 {
		config.Database.Port = 5432
	}
	if config.Database.User == "" {
		config.Database.User = "dropindrop_user"
	}
	if config.Database.Password == "" {
		config.Database.Password = "dropindrop_password"
	}
	if config.Database.Name == "" {
		config.Database.Name = "dropindrop_db"
	}
	if config.Database.SSLMode == "" {
		config.Database.SSLMode = "disable"
	}

	// JWT defaults
	if config.JWT.Secret == "" {
		config.JWT.Secret = "dropindrop-jwt-secret-change-in-production"
	}
	if config.JWT.Expiry == "" {
		config.JWT.Expiry = "24h"
	}

	// Server defaults
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if len(config.Server.CORSOrigins) == 0 {
		config.Server.CORSOrigins = []string{"http://localhost:3000"}
	}

	// Email defaults
	if config.Email.FromEmail == "" {
		config.Email.FromEmail = "noreply@dropindrop.app"
	}
	if config.Email.FromName == "" {
		config.Email.FromName = "DropInDrop"
	}

	// WhatsApp gateway defaults
	if config.WhatsApp.BaseURL == "" {
		config.WhatsApp.BaseURL = "http://localhost:3001"
	}
	if config.WhatsApp.Session == "" {
		config.WhatsApp.Session = "default"
	}
	if config.WhatsApp.RetryAttempts == 0 {
		config.WhatsApp.RetryAttempts = 3
	}
	if config.WhatsApp.RetryDelayMs == 0 {
		config.WhatsApp.RetryDelayMs = 2000
	}
	if config.WhatsApp.SendDelayMs == 0 {
		config.WhatsApp.SendDelayMs = 3000
	}

	// Dispatch defaults
	if config.Dispatch.Timezone == "" {
		config.Dispatch.Timezone = "Asia/Jakarta"
	}
	if config.Dispatch.PollSchedule == "" {
		config.Dispatch.PollSchedule = "* * * * *"
	}

	// Security defaults
	if config.Security.BCryptCost == 0 {
		config.Security.BCryptCost = 12
	}

	// Midtrans defaults
	if config.Midtrans.BaseURL == "" {
		config.Midtrans.BaseURL = "https://api.sandbox.midtrans.com"
	}

	// Feature defaults, only when the YAML left the key out
	enabled := true
	if config.Features.EnablePayments == nil {
		config.Features.EnablePayments = &enabled
	}
	if config.Features.EnableDispatchPoller == nil {
		config.Features.EnableDispatchPoller = &enabled
	}
	if config.Features.EnableNotifications == nil {
		config.Features.EnableNotifications = &enabled
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		// Try to load config if not already loaded
		if err := LoadConfig(); err != nil {
			// If loading fails, create a default config
			config := &Config{}
			setDefaults(config)
			AppConfig = config
		}
	}
	return AppConfig
}
