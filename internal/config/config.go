package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Row store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	AWS       AWSConfig       `yaml:"aws"`
	JWT       JWTConfig       `yaml:"jwt"`
	Auth      AuthConfig      `yaml:"auth"`
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	APNs      APNsConfig      `yaml:"apns"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Demo      DemoConfig      `yaml:"demo"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// StoreConfig selects and tunes the row store
type StoreConfig struct {
	Backend         string        `yaml:"backend"`
	SpreadsheetID   string        `yaml:"spreadsheet_id"`
	CredentialsFile string        `yaml:"credentials_file"`
	BatchSize       int           `yaml:"batch_size"`
	BatchDelay      time.Duration `yaml:"batch_delay"`
	WritesPerSecond float64       `yaml:"writes_per_second"`
}

// AWSConfig holds object storage configuration
type AWSConfig struct {
	Region            string `yaml:"region"`
	S3Bucket          string `yaml:"s3_bucket"`
	AccessKey         string `yaml:"access_key"`
	SecretKey         string `yaml:"secret_key"`
	Endpoint          string `yaml:"endpoint"`
	PublicBaseURL     string `yaml:"public_base_url"`
	MaxImageDimension int    `yaml:"max_image_dimension"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

// AuthConfig holds the shared secret of the sign-in gateway
type AuthConfig struct {
	GatewaySecret string `yaml:"gateway_secret"`
}

// AnalyzerConfig holds image analysis configuration
type AnalyzerConfig struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// AllowedImageHosts are fetched without the public-address check
	AllowedImageHosts []string `yaml:"allowed_image_hosts"`
}

// APNsConfig holds Apple push configuration
type APNsConfig struct {
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// DemoConfig toggles demo data endpoints
type DemoConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used for keys missing from the file
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Store: StoreConfig{
			Backend:    BackendMemory,
			BatchSize:  20,
			BatchDelay: time.Second,
		},
		AWS: AWSConfig{
			Region:            "ap-northeast-2",
			MaxImageDimension: 1920,
		},
		JWT: JWTConfig{ExpiryHours: 24 * 30},
		Analyzer: AnalyzerConfig{
			Model:      "claude-sonnet-4-20250514",
			BaseURL:    "https://api.anthropic.com",
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
		Scheduler: SchedulerConfig{Interval: 10 * time.Minute},
		Log:       LogConfig{Level: "info"},
	}
}

func (c *Config) applyEnv() {
	override := func(target *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}

	override(&c.JWT.Secret, "JWT_SECRET")
	override(&c.Database.Password, "DATABASE_PASSWORD")
	override(&c.Store.SpreadsheetID, "SPREADSHEET_ID")
	override(&c.Store.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	override(&c.Analyzer.APIKey, "ANTHROPIC_API_KEY")
	override(&c.AWS.AccessKey, "AWS_ACCESS_KEY_ID")
	override(&c.AWS.SecretKey, "AWS_SECRET_ACCESS_KEY")
	override(&c.Auth.GatewaySecret, "AUTH_GATEWAY_SECRET")
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	switch c.Store.Backend {
	case BackendMemory, BackendPostgres:
	case BackendSheets:
		if c.Store.SpreadsheetID == "" {
			return fmt.Errorf("store.spreadsheet_id is required for the sheets backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Store.BatchSize <= 0 {
		return fmt.Errorf("store.batch_size must be positive")
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StorageConfigured reports whether uploads can go to object storage
func (c *AWSConfig) StorageConfigured() bool {
	return c.S3Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Configured reports whether APNs credentials are present
func (c *APNsConfig) Configured() bool {
	return c.KeyFile != "" && c.KeyID != "" && c.TeamID != "" && c.Topic != ""
}
