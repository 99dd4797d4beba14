package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/offershow-lab/offershow/internal/core/salary"
	"github.com/offershow-lab/offershow/internal/core/storage"
)

const (
	defaultWeeklySampleFloor  = 3
	defaultMonthlySampleFloor = 5
)

// JobOptions tunes the statistics jobs. Sample floors are the minimum offer
// count a company needs in a window before a per-company trend row is emitted;
// they filter out single-offer noise.
type JobOptions struct {
	WeeklySampleFloor  int
	MonthlySampleFloor int
}

// DefaultJobOptions returns the floors the system has always shipped with.
func DefaultJobOptions() JobOptions {
	return JobOptions{
		WeeklySampleFloor:  defaultWeeklySampleFloor,
		MonthlySampleFloor: defaultMonthlySampleFloor,
	}
}

func (o JobOptions) normalized() JobOptions {
	n := o
	if n.WeeklySampleFloor <= 0 {
		n.WeeklySampleFloor = defaultWeeklySampleFloor
	}
	if n.MonthlySampleFloor <= 0 {
		n.MonthlySampleFloor = defaultMonthlySampleFloor
	}
	return n
}

// Jobs holds the four scheduled statistics jobs. Each run determines its
// target period from the injected clock, checks the per-dimension idempotency
// guard, fetches the offer window, aggregates, and persists.
//
// Guards are checked per dimension rather than once per job: a run that wrote
// COMPANY rows but failed before POSITION/CITY resumes those dimensions on the
// next trigger instead of silently skipping them forever.
type Jobs struct {
	offers storage.OfferSource
	stats  storage.StatisticsStore
	opts   JobOptions
	nowFn  func() time.Time
}

// NewJobs creates the job set over the given stores.
func NewJobs(offers storage.OfferSource, stats storage.StatisticsStore, opts JobOptions) *Jobs {
	return &Jobs{
		offers: offers,
		stats:  stats,
		opts:   opts.normalized(),
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type salaryDimension struct {
	dimension string
	keyFn     func(salary.Offer) string
}

var salaryDimensions = []salaryDimension{
	{salary.DimCompany, func(o salary.Offer) string { return o.CompanyName }},
	{salary.DimPosition, func(o salary.Offer) string { return o.Position }},
	{salary.DimCity, func(o salary.Offer) string { return o.City }},
}

// RunDailySalary generates yesterday's per-company, per-position and per-city
// salary averages. Dimensions whose rows already exist for the date are
// skipped independently.
func (j *Jobs) RunDailySalary(ctx context.Context) error {
	window := salary.YesterdayWindow(j.nowFn())
	dateStr := window.DateString()

	slog.Info("[DailySalaryJob] Starting", "date", dateStr)

	var pending []salaryDimension
	for _, dim := range salaryDimensions {
		count, err := j.stats.CheckExists(ctx, salary.TypeSalary, dim.dimension, dateStr)
		if err != nil {
			return fmt.Errorf("daily salary: check %s guard: %w", dim.dimension, err)
		}
		if count > 0 {
			slog.Info("[DailySalaryJob] Dimension already generated, skipping",
				"dimension", dim.dimension, "date", dateStr)
			continue
		}
		pending = append(pending, dim)
	}
	if len(pending) == 0 {
		slog.Info("[DailySalaryJob] All dimensions already generated, skipping", "date", dateStr)
		return nil
	}

	offers, err := j.offers.FindByDateRange(ctx, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("daily salary: fetch offers: %w", err)
	}
	if len(offers) == 0 {
		slog.Info("[DailySalaryJob] No offers found, skipping generation", "date", dateStr)
		return nil
	}

	now := j.nowFn()
	for _, dim := range pending {
		batch := j.buildDimensionBatch(offers, salary.TypeSalary, dim.dimension, dim.keyFn, window.Date, now, 0)
		if err := j.stats.BatchInsert(ctx, batch); err != nil {
			return fmt.Errorf("daily salary: persist %s batch: %w", dim.dimension, err)
		}
		slog.Info("[DailySalaryJob] Dimension generated",
			"dimension", dim.dimension, "date", dateStr, "rows", len(batch))
	}

	slog.Info("[DailySalaryJob] Completed", "date", dateStr, "offers", len(offers))
	return nil
}

// RunWeeklyTrend generates the trailing-week overall trend row plus
// per-company rows for companies at or above the weekly sample floor.
func (j *Jobs) RunWeeklyTrend(ctx context.Context) error {
	window := salary.TrailingWeekWindow(j.nowFn())
	return j.runTrend(ctx, trendJobSpec{
		name:             "[WeeklyTrendJob]",
		window:           window,
		overallDimension: salary.DimWeekly,
		companyDimension: salary.DimWeeklyCompany,
		sampleFloor:      j.opts.WeeklySampleFloor,
	})
}

// RunMonthlyTrend generates the previous calendar month's overall trend row
// plus per-company rows for companies at or above the monthly sample floor.
func (j *Jobs) RunMonthlyTrend(ctx context.Context) error {
	window := salary.PreviousMonthWindow(j.nowFn())
	return j.runTrend(ctx, trendJobSpec{
		name:             "[MonthlyTrendJob]",
		window:           window,
		overallDimension: salary.DimMonthly,
		companyDimension: salary.DimMonthlyCompany,
		sampleFloor:      j.opts.MonthlySampleFloor,
	})
}

// RunCleanup deletes statistic rows dated before the one-year retention
// cutoff. Deletion is naturally idempotent; no guard needed.
func (j *Jobs) RunCleanup(ctx context.Context) error {
	cutoff := salary.RetentionCutoff(j.nowFn())

	deleted, err := j.stats.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cleanup: delete before %s: %w", cutoff, err)
	}

	slog.Info("[CleanupJob] Deleted old statistics", "cutoff", cutoff, "deleted", deleted)
	return nil
}

type trendJobSpec struct {
	name             string
	window           salary.Window
	overallDimension string
	companyDimension string
	sampleFloor      int
}

// runTrend is the shared weekly/monthly skeleton. The overall and per-company
// dimensions carry independent guards so a partial failure between the two
// writes is resumable.
func (j *Jobs) runTrend(ctx context.Context, spec trendJobSpec) error {
	dateStr := spec.window.DateString()

	slog.Info(spec.name+" Starting", "window_end", dateStr)

	overallCount, err := j.stats.CheckExists(ctx, salary.TypeTrend, spec.overallDimension, dateStr)
	if err != nil {
		return fmt.Errorf("%s trend: check guard: %w", spec.overallDimension, err)
	}
	companyCount, err := j.stats.CheckExists(ctx, salary.TypeTrend, spec.companyDimension, dateStr)
	if err != nil {
		return fmt.Errorf("%s trend: check guard: %w", spec.companyDimension, err)
	}
	if overallCount > 0 && companyCount > 0 {
		slog.Info(spec.name+" Already generated, skipping", "window_end", dateStr)
		return nil
	}

	offers, err := j.offers.FindByDateRange(ctx, spec.window.Start, spec.window.End)
	if err != nil {
		return fmt.Errorf("%s trend: fetch offers: %w", spec.overallDimension, err)
	}
	if len(offers) == 0 {
		slog.Info(spec.name+" No offers found, skipping generation", "window_end", dateStr)
		return nil
	}

	now := j.nowFn()

	if overallCount == 0 {
		overall := &salary.Statistic{
			Type:           salary.TypeTrend,
			Dimension:      spec.overallDimension,
			DimensionValue: salary.DimensionValueAll,
			Value:          salary.ComputeAverage(offers),
			Count:          len(offers),
			StatisticDate:  spec.window.Date,
			CreatedAt:      now,
		}
		if err := j.stats.Insert(ctx, overall); err != nil {
			return fmt.Errorf("%s trend: persist overall row: %w", spec.overallDimension, err)
		}
	}

	if companyCount == 0 {
		batch := j.buildDimensionBatch(offers, salary.TypeTrend, spec.companyDimension,
			func(o salary.Offer) string { return o.CompanyName },
			spec.window.Date, now, spec.sampleFloor)
		if err := j.stats.BatchInsert(ctx, batch); err != nil {
			return fmt.Errorf("%s trend: persist company batch: %w", spec.companyDimension, err)
		}
		slog.Info(spec.name+" Company rows generated", "window_end", dateStr, "rows", len(batch))
	}

	slog.Info(spec.name+" Completed", "window_end", dateStr, "offers", len(offers))
	return nil
}

// buildDimensionBatch groups offers by key and emits one statistic row per
// group with at least sampleFloor offers. Count is the raw group size; the
// average itself excludes invalid samples.
func (j *Jobs) buildDimensionBatch(
	offers []salary.Offer,
	statType, dimension string,
	keyFn func(salary.Offer) string,
	date time.Time,
	createdAt time.Time,
	sampleFloor int,
) []*salary.Statistic {
	groups := salary.GroupBy(offers, keyFn)

	batch := make([]*salary.Statistic, 0, len(groups))
	for value, group := range groups {
		if len(group) < sampleFloor {
			continue
		}
		batch = append(batch, &salary.Statistic{
			Type:           statType,
			Dimension:      dimension,
			DimensionValue: value,
			Value:          salary.ComputeAverage(group),
			Count:          len(group),
			StatisticDate:  date,
			CreatedAt:      createdAt,
		})
	}
	return batch
}
