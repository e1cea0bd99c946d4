package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the findings API.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Tracker TrackerConfig `yaml:"tracker"`
	Sheets  SheetsConfig  `yaml:"sheets"`
	Logging LoggingConfig `yaml:"logging"`
	CORS    CORSConfig    `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `yaml:"port" env:"FINDINGS_PORT"`
	Debug   bool   `yaml:"debug" env:"FINDINGS_DEBUG"`
}

// TrackerConfig holds the issue tracker connection settings and the
// custom-field identifiers the aggregations read. Field identifiers are
// per-instance (the tracker assigns them at field creation), so they are
// configuration, not code.
type TrackerConfig struct {
	BaseURL  string        `yaml:"base_url" env:"TRACKER_BASE_URL"`
	Email    string        `yaml:"email" env:"TRACKER_EMAIL"`
	APIToken string        `yaml:"api_token" env:"TRACKER_API_TOKEN"`
	Project  string        `yaml:"project" env:"TRACKER_PROJECT"`
	PageSize int           `yaml:"page_size"`
	MaxPages int           `yaml:"max_pages"`
	Timeout  time.Duration `yaml:"timeout"`
	Fields   FieldIDs      `yaml:"fields"`
}

// FieldIDs maps logical attribute names to tracker custom-field identifiers.
type FieldIDs struct {
	AuditYear  string `yaml:"audit_year"`
	RiskLevel  string `yaml:"risk_level"`
	Category   string `yaml:"category"`
	AuditLead  string `yaml:"audit_lead"`
	AuditType  string `yaml:"audit_type"`
	RevisedDue string `yaml:"revised_due"`
}

// SheetsConfig holds the spreadsheet read service settings.
type SheetsConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TokenURL        string        `yaml:"token_url"`
	SpreadsheetID   string        `yaml:"spreadsheet_id" env:"SHEETS_SPREADSHEET_ID"`
	CredentialsFile string        `yaml:"credentials_file" env:"SHEETS_CREDENTIALS_FILE"`
	KPIRange        string        `yaml:"kpi_range"`
	Timeout         time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "findings-api"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8095
	}

	if cfg.Tracker.Project == "" {
		cfg.Tracker.Project = "FINDINGS"
	}
	if cfg.Tracker.PageSize == 0 {
		cfg.Tracker.PageSize = 100
	}
	if cfg.Tracker.MaxPages == 0 {
		cfg.Tracker.MaxPages = 200
	}
	if cfg.Tracker.Timeout == 0 {
		cfg.Tracker.Timeout = 30 * time.Second
	}
	if cfg.Tracker.Fields.AuditYear == "" {
		cfg.Tracker.Fields.AuditYear = "customfield_16447"
	}

	if cfg.Sheets.BaseURL == "" {
		cfg.Sheets.BaseURL = "https://sheets.googleapis.com"
	}
	if cfg.Sheets.TokenURL == "" {
		cfg.Sheets.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if cfg.Sheets.Timeout == 0 {
		cfg.Sheets.Timeout = 30 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Content-Type", "Authorization"}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if c.Tracker.BaseURL == "" {
		return &ValidationError{Field: "tracker.base_url", Message: "is required"}
	}
	if c.Tracker.Project == "" {
		return &ValidationError{Field: "tracker.project", Message: "is required"}
	}
	if c.Tracker.PageSize < 1 {
		return &ValidationError{Field: "tracker.page_size", Message: "must be greater than 0"}
	}
	if c.Tracker.MaxPages < 1 {
		return &ValidationError{Field: "tracker.max_pages", Message: "must be greater than 0"}
	}
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}
