package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "MARKET_SENTIMENT_CONFIG"
	databasePathEnv       = "DATABASE_PATH"
	classifierEndpointEnv = "CLASSIFIER_ENDPOINT"
	classifierAPIKeyEnv   = "CLASSIFIER_API_KEY"
	serverAddrEnv         = "SERVER_ADDR"

	defaultInterval     = time.Hour
	defaultCycleTimeout = 10 * time.Minute
)

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Server     ServerConfig     `yaml:"server"`
	Outputs    OutputConfig     `yaml:"outputs"`
	Logging    LoggingConfig    `yaml:"logging"`
	Sources    []SourceConfig   `yaml:"sources"`
}

// DatabaseConfig locates the sqlite article store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ClassifierConfig describes the external sentiment inference service.
type ClassifierConfig struct {
	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"apiKey"`
	MaxTextRunes int    `yaml:"maxTextRunes"`
}

// SchedulerConfig defines how often pipeline cycles run.
type SchedulerConfig struct {
	Interval     string `yaml:"interval"`
	CycleTimeout string `yaml:"cycleTimeout"`
}

// IntervalDuration parses the cycle interval, falling back to the default.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	return parseDuration(s.Interval, defaultInterval)
}

// CycleTimeoutDuration parses the per-cycle timeout, falling back to the default.
func (s SchedulerConfig) CycleTimeoutDuration() time.Duration {
	return parseDuration(s.CycleTimeout, defaultCycleTimeout)
}

// ServerConfig describes the read API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// OutputConfig locates file outputs (trend history, raw-scrape archive).
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	TrendFile   string `yaml:"trendFile"`
	ArchiveFile string `yaml:"archiveFile"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes a single news source with its fetch strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Fetcher string            `yaml:"fetcher"`
	Company string            `yaml:"company"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(classifierEndpointEnv); v != "" {
		c.Classifier.Endpoint = v
	}

	if v := os.Getenv(classifierAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.APIKey != "" {
		base.Classifier.APIKey = override.Classifier.APIKey
	}
	if override.Classifier.MaxTextRunes > 0 {
		base.Classifier.MaxTextRunes = override.Classifier.MaxTextRunes
	}

	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.CycleTimeout != "" {
		base.Scheduler.CycleTimeout = override.Scheduler.CycleTimeout
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Outputs.Dir != "" {
		base.Outputs.Dir = override.Outputs.Dir
	}
	if override.Outputs.TrendFile != "" {
		base.Outputs.TrendFile = override.Outputs.TrendFile
	}
	if override.Outputs.ArchiveFile != "" {
		base.Outputs.ArchiveFile = override.Outputs.ArchiveFile
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("config: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return d
}

func defaultConfig() Config {
	return Config{
		Database:   DatabaseConfig{Path: "outputs/market_sentiment.db"},
		Classifier: ClassifierConfig{Endpoint: "http://localhost:8000", MaxTextRunes: 2000},
		Scheduler:  SchedulerConfig{Interval: "1h", CycleTimeout: "10m"},
		Server:     ServerConfig{Addr: ":8080"},
		Outputs: OutputConfig{
			Dir:         "outputs",
			TrendFile:   "trend_history.json",
			ArchiveFile: "scraped_articles_archive.json",
		},
		Logging: LoggingConfig{Level: "info"},
		Sources: []SourceConfig{
			{
				Name:    "yahoo-finance-tsla",
				Fetcher: "rss",
				Company: "TSLA",
				URL:     "https://finance.yahoo.com/rss/headline?s=TSLA",
			},
			{
				Name:    "yahoo-finance-aapl",
				Fetcher: "rss",
				Company: "AAPL",
				URL:     "https://finance.yahoo.com/rss/headline?s=AAPL",
			},
		},
	}
}
