package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/axi1912/Easy-Customs/app/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Observability ObservabilityConfig `yaml:"observability"`
	Tournament    TournamentConfig    `yaml:"tournament"`
	Sheets        SheetsConfig        `yaml:"sheets"`
	Analysis      AnalysisConfig      `yaml:"analysis"`
	Queue         QueueConfig         `yaml:"queue"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL runs the in-memory bus.
type NATSConfig struct {
	URL        string        `yaml:"url"`
	JetStream  bool          `yaml:"jetstream"`
	StreamName string        `yaml:"stream_name"`
	AckWait    time.Duration `yaml:"ack_wait"`
}

// HTTPConfig holds the read-only API listener settings.
type HTTPConfig struct {
	Addr              string  `yaml:"addr"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// TournamentConfig bounds what admins may configure.
type TournamentConfig struct {
	MinTeams           int    `yaml:"min_teams"`
	MaxTeams           int    `yaml:"max_teams"`
	MinTeamSize        int    `yaml:"min_team_size"`
	MaxTeamSize        int    `yaml:"max_team_size"`
	MinTeamNameLength  int    `yaml:"min_team_name_length"`
	MaxTeamNameLength  int    `yaml:"max_team_name_length"`
	MaxTagLength       int    `yaml:"max_tag_length"`
	DefaultGame        string `yaml:"default_game"`
	DefaultScoringMode string `yaml:"default_scoring_mode"`
	Timezone           string `yaml:"timezone"`
}

// SheetsConfig points at the workbook that mirrors registrations and results.
// An empty path disables the mirror.
type SheetsConfig struct {
	WorkbookPath string `yaml:"workbook_path"`
}

// AnalysisConfig configures the image analysis client. An empty API key disables it.
type AnalysisConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Endpoint          string        `yaml:"endpoint"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
	PendingTTL        time.Duration `yaml:"pending_ttl"`
}

// QueueConfig configures the river job queue used for scheduled starts.
type QueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxWorkers int  `yaml:"max_workers"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets env vars win over the file.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_JETSTREAM"); v != "" {
		cfg.NATS.JetStream = v == "true"
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Analysis.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Analysis.Model = v
	}
	if v := os.Getenv("SHEETS_WORKBOOK_PATH"); v != "" {
		cfg.Sheets.WorkbookPath = v
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("QUEUE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid QUEUE_MAX_WORKERS value: %w", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	if v := os.Getenv("TOURNAMENT_TIMEZONE"); v != "" {
		cfg.Tournament.Timezone = v
	}
	return nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		c.HTTP.RequestsPerSecond = 5
	}
	if c.HTTP.Burst <= 0 {
		c.HTTP.Burst = 10
	}

	t := &c.Tournament
	if t.MinTeams == 0 {
		t.MinTeams = 4
	}
	if t.MaxTeams == 0 {
		t.MaxTeams = 64
	}
	if t.MinTeamSize == 0 {
		t.MinTeamSize = 1
	}
	if t.MaxTeamSize == 0 {
		t.MaxTeamSize = 10
	}
	if t.MinTeamNameLength == 0 {
		t.MinTeamNameLength = 2
	}
	if t.MaxTeamNameLength == 0 {
		t.MaxTeamNameLength = 32
	}
	if t.MaxTagLength == 0 {
		t.MaxTagLength = 6
	}
	if t.DefaultGame == "" {
		t.DefaultGame = "warzone"
	}
	if t.DefaultScoringMode == "" {
		t.DefaultScoringMode = "multiplier"
	}
	if t.Timezone == "" {
		t.Timezone = "UTC"
	}

	a := &c.Analysis
	if a.Model == "" {
		a.Model = "gemini-1.5-flash"
	}
	if a.Endpoint == "" {
		a.Endpoint = "https://generativelanguage.googleapis.com/"
	}
	if a.RequestsPerMinute <= 0 {
		a.RequestsPerMinute = 15
	}
	if a.Timeout <= 0 {
		a.Timeout = 30 * time.Second
	}
	if a.PendingTTL <= 0 {
		a.PendingTTL = 15 * time.Minute
	}

	if c.Queue.MaxWorkers <= 0 {
		c.Queue.MaxWorkers = 5
	}
	if c.NATS.StreamName == "" {
		c.NATS.StreamName = "tournament"
	}
}

// Validate rejects inverted or nonsensical limits.
func (c *Config) Validate() error {
	t := c.Tournament
	var errs []error
	if t.MinTeams < 1 || t.MinTeams > t.MaxTeams {
		errs = append(errs, fmt.Errorf("tournament team limits inverted: min %d, max %d", t.MinTeams, t.MaxTeams))
	}
	if t.MinTeamSize < 1 || t.MinTeamSize > t.MaxTeamSize {
		errs = append(errs, fmt.Errorf("tournament team size limits inverted: min %d, max %d", t.MinTeamSize, t.MaxTeamSize))
	}
	if t.MinTeamNameLength < 1 || t.MinTeamNameLength > t.MaxTeamNameLength {
		errs = append(errs, fmt.Errorf("team name length limits inverted: min %d, max %d", t.MinTeamNameLength, t.MaxTeamNameLength))
	}
	if t.MaxTagLength < 1 {
		errs = append(errs, fmt.Errorf("max tag length must be positive, got %d", t.MaxTagLength))
	}
	switch t.DefaultScoringMode {
	case "multiplier", "flat":
	default:
		errs = append(errs, fmt.Errorf("unknown default scoring mode %q", t.DefaultScoringMode))
	}
	if _, err := time.LoadLocation(t.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid tournament timezone %q: %w", t.Timezone, err))
	}
	if c.Queue.Enabled && c.Postgres.DSN == "" {
		errs = append(errs, errors.New("queue requires a postgres DSN"))
	}
	return errors.Join(errs...)
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: "easy-customs",
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
	}
}
