package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Prober    ProberConfig    `yaml:"prober"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"SITEWATCH_HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SITEWATCH_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type StorageConfig struct {
	Path string `yaml:"path" env:"SITEWATCH_DB_PATH" env-default:"data/sitewatch.db"`
}

// SchedulerConfig controls check cadence. CheckInterval applies to every
// monitor unless HonorMonitorInterval is set, in which case the monitor's own
// interval_seconds wins.
type SchedulerConfig struct {
	CheckInterval        time.Duration `yaml:"check_interval" env:"SITEWATCH_CHECK_INTERVAL" env-default:"3m"`
	HonorMonitorInterval bool          `yaml:"honor_monitor_interval" env:"SITEWATCH_HONOR_MONITOR_INTERVAL" env-default:"false"`
	ResyncInterval       time.Duration `yaml:"resync_interval" env:"SITEWATCH_RESYNC_INTERVAL" env-default:"30s"`
	MaxConcurrentProbes  int64         `yaml:"max_concurrent_probes" env:"SITEWATCH_MAX_CONCURRENT_PROBES" env-default:"50"`
}

type ProberConfig struct {
	Timeout               time.Duration `yaml:"timeout" env:"SITEWATCH_PROBE_TIMEOUT" env-default:"10s"`
	UserAgent             string        `yaml:"user_agent" env:"SITEWATCH_PROBE_USER_AGENT" env-default:"SiteWatch/1.0"`
	EnforceExpectedStatus bool          `yaml:"enforce_expected_status" env:"SITEWATCH_ENFORCE_EXPECTED_STATUS" env-default:"false"`
	PrivilegedPing        bool          `yaml:"privileged_ping" env:"SITEWATCH_PRIVILEGED_PING" env-default:"false"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SITEWATCH_SMTP_HOST"`
	Port     int    `yaml:"port" env:"SITEWATCH_SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SITEWATCH_SMTP_USERNAME"`
	Password string `yaml:"password" env:"SITEWATCH_SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SITEWATCH_SMTP_FROM" env-default:"sitewatch@localhost"`
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type LogConfig struct {
	Level       string   `yaml:"level" env:"SITEWATCH_LOG_LEVEL" env-default:"info"`
	Development bool     `yaml:"development" env:"SITEWATCH_LOG_DEVELOPMENT" env-default:"false"`
	Outputs     []string `yaml:"outputs" env:"SITEWATCH_LOG_OUTPUTS" env-separator:"," env-default:"stdout"`
}

// Load reads an optional .env file, then the YAML file at path when it exists,
// and finally applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
			return &cfg, cfg.validate()
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Scheduler.CheckInterval <= 0 {
		return fmt.Errorf("scheduler.check_interval must be positive, got %s", c.Scheduler.CheckInterval)
	}
	if c.Scheduler.ResyncInterval <= 0 {
		return fmt.Errorf("scheduler.resync_interval must be positive, got %s", c.Scheduler.ResyncInterval)
	}
	if c.Scheduler.MaxConcurrentProbes <= 0 {
		return fmt.Errorf("scheduler.max_concurrent_probes must be positive, got %d", c.Scheduler.MaxConcurrentProbes)
	}
	if c.Prober.Timeout <= 0 {
		return fmt.Errorf("prober.timeout must be positive, got %s", c.Prober.Timeout)
	}
	if c.SMTP.Enabled() && (c.SMTP.Port <= 0 || c.SMTP.Port > 65535) {
		return fmt.Errorf("smtp.port out of range: %d", c.SMTP.Port)
	}
	return nil
}
