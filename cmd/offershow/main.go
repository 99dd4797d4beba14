package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/offershow-lab/offershow/internal/config"
	"github.com/offershow-lab/offershow/internal/core/storage/postgres"
	"github.com/offershow-lab/offershow/internal/migrations"
	"github.com/offershow-lab/offershow/internal/query"
	"github.com/offershow-lab/offershow/internal/scheduler"
	"github.com/offershow-lab/offershow/internal/server"
)

func main() {
	configPath := flag.String("config", "offershow.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	statsStore := postgres.NewStatisticsAdapter(dbAdapter.DB())

	// 3. Initialize Statistics Scheduler (cron-based batch jobs)
	var sched *scheduler.Scheduler
	if cfg.Statistics.Enabled {
		jobs := scheduler.NewJobs(dbAdapter, statsStore, scheduler.JobOptions{
			WeeklySampleFloor:  cfg.Statistics.WeeklySampleFloor,
			MonthlySampleFloor: cfg.Statistics.MonthlySampleFloor,
		})
		sched, err = scheduler.NewScheduler(jobs, scheduler.CronConfig{
			DailySalary:  cfg.Statistics.CronDaily,
			WeeklyTrend:  cfg.Statistics.CronWeekly,
			MonthlyTrend: cfg.Statistics.CronMonthly,
			Cleanup:      cfg.Statistics.CronCleanup,
		})
		if err != nil {
			slog.Error("Failed to initialize scheduler", "error", err)
			os.Exit(1)
		}
		slog.Info("Statistics scheduler initialized",
			"daily", cfg.Statistics.CronDaily,
			"weekly", cfg.Statistics.CronWeekly,
			"monthly", cfg.Statistics.CronMonthly,
			"cleanup", cfg.Statistics.CronCleanup,
		)
	} else {
		slog.Info("Statistics scheduler disabled by config")
	}

	// 4. Initialize Query Service (statistics API)
	querySvc := query.NewService(statsStore, cfg.Statistics.TotalMultiplierDecimal())

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	querySvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if sched != nil {
		g.Go(func() error {
			return sched.Start(gctx)
		})
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
