package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Config represents the top-level application config.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Statistics StatisticsConfig `koanf:"statistics"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatabaseConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// StatisticsConfig drives the scheduled jobs and the query-side display
// heuristic. Cron expressions are standard 5-field specs; the deployed
// defaults keep daily before weekly before monthly and assume triggers never
// overlap a still-running job.
type StatisticsConfig struct {
	Enabled            bool   `koanf:"enabled"`
	CronDaily          string `koanf:"cron_daily"`
	CronWeekly         string `koanf:"cron_weekly"`
	CronMonthly        string `koanf:"cron_monthly"`
	CronCleanup        string `koanf:"cron_cleanup"`
	WeeklySampleFloor  int    `koanf:"weekly_sample_floor"`
	MonthlySampleFloor int    `koanf:"monthly_sample_floor"`
	TotalMultiplier    string `koanf:"total_multiplier"`
}

// TotalMultiplierDecimal parses the configured base-to-total ratio.
// Validate has already checked it parses and is positive.
func (c StatisticsConfig) TotalMultiplierDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.TotalMultiplier)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}

	crons := map[string]string{
		"statistics.cron_daily":   c.Statistics.CronDaily,
		"statistics.cron_weekly":  c.Statistics.CronWeekly,
		"statistics.cron_monthly": c.Statistics.CronMonthly,
		"statistics.cron_cleanup": c.Statistics.CronCleanup,
	}
	for key, expr := range crons {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, expr, err)
		}
	}

	if c.Statistics.WeeklySampleFloor <= 0 {
		return fmt.Errorf("statistics.weekly_sample_floor must be > 0")
	}
	if c.Statistics.MonthlySampleFloor <= 0 {
		return fmt.Errorf("statistics.monthly_sample_floor must be > 0")
	}

	multiplier, err := decimal.NewFromString(c.Statistics.TotalMultiplier)
	if err != nil {
		return fmt.Errorf("invalid statistics.total_multiplier %q: %w", c.Statistics.TotalMultiplier, err)
	}
	if multiplier.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("statistics.total_multiplier must be > 0")
	}

	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                     8080,
		"server.host":                     "0.0.0.0",
		"server.mode":                     "release",
		"database.dsn":                    "postgres://localhost:5432/offershow?sslmode=disable",
		"database.max_open_conns":         25,
		"database.max_idle_conns":         25,
		"database.auto_migrate":           true,
		"statistics.enabled":              true,
		"statistics.cron_daily":           "0 1 * * *",
		"statistics.cron_weekly":          "0 2 * * 1",
		"statistics.cron_monthly":         "0 3 1 * *",
		"statistics.cron_cleanup":         "0 4 15 * *",
		"statistics.weekly_sample_floor":  3,
		"statistics.monthly_sample_floor": 5,
		"statistics.total_multiplier":     "2.2",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("OFFERSHOW_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "OFFERSHOW_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
