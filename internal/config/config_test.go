package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.True(t, cfg.Database.AutoMigrate)

	require.True(t, cfg.Statistics.Enabled)
	require.Equal(t, "0 1 * * *", cfg.Statistics.CronDaily)
	require.Equal(t, "0 2 * * 1", cfg.Statistics.CronWeekly)
	require.Equal(t, "0 3 1 * *", cfg.Statistics.CronMonthly)
	require.Equal(t, "0 4 15 * *", cfg.Statistics.CronCleanup)
	require.Equal(t, 3, cfg.Statistics.WeeklySampleFloor)
	require.Equal(t, 5, cfg.Statistics.MonthlySampleFloor)
	require.Equal(t, "2.2", cfg.Statistics.TotalMultiplier)
	require.Equal(t, "2.2", cfg.Statistics.TotalMultiplierDecimal().String())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OFFERSHOW_SERVER__PORT", "9090")
	t.Setenv("OFFERSHOW_STATISTICS__TOTAL_MULTIPLIER", "1.8")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "1.8", cfg.Statistics.TotalMultiplier)
}

func TestValidate_Rejections(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"blank host", func(c *Config) { c.Server.Host = " " }, "server.host"},
		{"bad mode", func(c *Config) { c.Server.Mode = "verbose" }, "server.mode"},
		{"blank dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"bad open conns", func(c *Config) { c.Database.MaxOpenConns = 0 }, "max_open_conns"},
		{"bad daily cron", func(c *Config) { c.Statistics.CronDaily = "every day" }, "cron_daily"},
		{"bad cleanup cron", func(c *Config) { c.Statistics.CronCleanup = "61 4 15 * *" }, "cron_cleanup"},
		{"zero weekly floor", func(c *Config) { c.Statistics.WeeklySampleFloor = 0 }, "weekly_sample_floor"},
		{"zero monthly floor", func(c *Config) { c.Statistics.MonthlySampleFloor = 0 }, "monthly_sample_floor"},
		{"garbage multiplier", func(c *Config) { c.Statistics.TotalMultiplier = "two" }, "total_multiplier"},
		{"negative multiplier", func(c *Config) { c.Statistics.TotalMultiplier = "-1" }, "total_multiplier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}
