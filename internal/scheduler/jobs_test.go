package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/offershow-lab/offershow/internal/core/salary"
	"github.com/stretchr/testify/require"
)

type fakeOfferSource struct {
	offers []salary.Offer
	err    error

	lastStart string
	lastEnd   string
}

func (f *fakeOfferSource) FindByDateRange(_ context.Context, start, end string) ([]salary.Offer, error) {
	f.lastStart, f.lastEnd = start, end
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

type fakeStatisticsStore struct {
	rows []*salary.Statistic

	// failDimension makes BatchInsert fail for one dimension, simulating a
	// partial job failure.
	failDimension string
}

func (f *fakeStatisticsStore) Insert(_ context.Context, stat *salary.Statistic) error {
	f.rows = append(f.rows, stat)
	return nil
}

func (f *fakeStatisticsStore) BatchInsert(_ context.Context, stats []*salary.Statistic) error {
	for _, stat := range stats {
		if stat.Dimension == f.failDimension {
			return errors.New("simulated batch failure")
		}
	}
	f.rows = append(f.rows, stats...)
	return nil
}

func (f *fakeStatisticsStore) FindByTypeAndDimension(_ context.Context, statType, dimension, start, end string) ([]salary.Statistic, error) {
	var out []salary.Statistic
	for _, r := range f.rows {
		date := r.StatisticDate.Format(salary.DateLayout)
		if r.Type == statType && r.Dimension == dimension && date >= start && date <= end {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStatisticsStore) FindByTypeAndDimensionValue(ctx context.Context, statType, dimension, dimensionValue, start, end string) ([]salary.Statistic, error) {
	all, _ := f.FindByTypeAndDimension(ctx, statType, dimension, start, end)
	var out []salary.Statistic
	for _, r := range all {
		if r.DimensionValue == dimensionValue {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStatisticsStore) CheckExists(_ context.Context, statType, dimension, date string) (int, error) {
	count := 0
	for _, r := range f.rows {
		if r.Type == statType && r.Dimension == dimension && r.StatisticDate.Format(salary.DateLayout) == date {
			count++
		}
	}
	return count, nil
}

func (f *fakeStatisticsStore) DeleteBefore(_ context.Context, date string) (int64, error) {
	var kept []*salary.Statistic
	var deleted int64
	for _, r := range f.rows {
		if r.StatisticDate.Format(salary.DateLayout) < date {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.rows = kept
	return deleted, nil
}

func (f *fakeStatisticsStore) find(statType, dimension, value string) *salary.Statistic {
	for _, r := range f.rows {
		if r.Type == statType && r.Dimension == dimension && r.DimensionValue == value {
			return r
		}
	}
	return nil
}

// Monday 2025-03-10; yesterday is Sunday 2025-03-09.
var fixedNow = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

func newTestJobs(offers *fakeOfferSource, stats *fakeStatisticsStore) *Jobs {
	jobs := NewJobs(offers, stats, DefaultJobOptions())
	jobs.nowFn = func() time.Time { return fixedNow }
	return jobs
}

func offer(id int64, company, position, city, structure string) salary.Offer {
	return salary.Offer{
		ID:              id,
		CompanyName:     company,
		Position:        position,
		City:            city,
		SalaryStructure: structure,
	}
}

func TestDailySalaryJob_GeneratesAllDimensions(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 30000, "bonus": 150000, "stock": 100000}`),
		offer(2, "X", "Frontend", "Beijing", `{"base": 20000, "bonus": 50000, "stock": 50000}`),
	}}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunDailySalary(context.Background()))

	// Offer window covers the full previous calendar day.
	require.Equal(t, "2025-03-09 00:00:00", offers.lastStart)
	require.Equal(t, "2025-03-09 23:59:59", offers.lastEnd)

	companyRow := stats.find(salary.TypeSalary, salary.DimCompany, "X")
	require.NotNil(t, companyRow)
	require.Equal(t, "200000.00", companyRow.Value.StringFixed(2))
	require.Equal(t, 2, companyRow.Count)
	require.Equal(t, "2025-03-09", companyRow.StatisticDate.Format(salary.DateLayout))

	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimPosition, "Backend"))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimPosition, "Frontend"))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimCity, "Shanghai"))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimCity, "Beijing"))

	// 1 company + 2 positions + 2 cities.
	require.Len(t, stats.rows, 5)
}

func TestDailySalaryJob_SecondRunIsNoOp(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
	}}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunDailySalary(context.Background()))
	firstCount := len(stats.rows)

	require.NoError(t, jobs.RunDailySalary(context.Background()))
	require.Len(t, stats.rows, firstCount, "second invocation must not duplicate rows")
}

func TestDailySalaryJob_ResumesMissingDimensions(t *testing.T) {
	// A previous run wrote COMPANY rows and then died. The per-dimension
	// guards must regenerate POSITION and CITY without touching COMPANY.
	date := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	stats := &fakeStatisticsStore{rows: []*salary.Statistic{{
		Type: salary.TypeSalary, Dimension: salary.DimCompany, DimensionValue: "X",
		Count: 1, StatisticDate: date,
	}}}
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
	}}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunDailySalary(context.Background()))

	companyRows, _ := stats.FindByTypeAndDimension(
		context.Background(), salary.TypeSalary, salary.DimCompany, "2025-03-09", "2025-03-09")
	require.Len(t, companyRows, 1, "existing company rows must not be duplicated")
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimPosition, "Backend"))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimCity, "Shanghai"))
}

func TestDailySalaryJob_PartialFailureIsResumable(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
	}}
	stats := &fakeStatisticsStore{failDimension: salary.DimPosition}
	jobs := newTestJobs(offers, stats)

	// COMPANY lands, POSITION fails, CITY never runs.
	require.Error(t, jobs.RunDailySalary(context.Background()))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimCompany, "X"))
	require.Nil(t, stats.find(salary.TypeSalary, salary.DimCity, "Shanghai"))

	// Next trigger: the failure is gone; remaining dimensions are filled in.
	stats.failDimension = ""
	require.NoError(t, jobs.RunDailySalary(context.Background()))

	companyRows, _ := stats.FindByTypeAndDimension(
		context.Background(), salary.TypeSalary, salary.DimCompany, "2025-03-09", "2025-03-09")
	require.Len(t, companyRows, 1)
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimPosition, "Backend"))
	require.NotNil(t, stats.find(salary.TypeSalary, salary.DimCity, "Shanghai"))
}

func TestDailySalaryJob_EmptyWindowIsNoOp(t *testing.T) {
	offers := &fakeOfferSource{}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunDailySalary(context.Background()))
	require.Empty(t, stats.rows)
}

func TestWeeklyTrendJob_OverallAndSampleFloor(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		// Company X: 3 offers — meets the floor.
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(2, "X", "Backend", "Shanghai", `{"base": 20000, "bonus": 0, "stock": 0}`),
		offer(3, "X", "Backend", "Shanghai", `{"base": 30000, "bonus": 0, "stock": 0}`),
		// Company Y: 2 offers — below the floor, no row.
		offer(4, "Y", "Backend", "Beijing", `{"base": 50000, "bonus": 0, "stock": 0}`),
		offer(5, "Y", "Backend", "Beijing", `{"base": 60000, "bonus": 0, "stock": 0}`),
	}}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunWeeklyTrend(context.Background()))

	// Trailing 7 days ending yesterday.
	require.Equal(t, "2025-03-03 00:00:00", offers.lastStart)
	require.Equal(t, "2025-03-09 23:59:59", offers.lastEnd)

	overall := stats.find(salary.TypeTrend, salary.DimWeekly, salary.DimensionValueAll)
	require.NotNil(t, overall)
	require.Equal(t, 5, overall.Count)
	require.Equal(t, "34000.00", overall.Value.StringFixed(2))
	require.Equal(t, "2025-03-09", overall.StatisticDate.Format(salary.DateLayout))

	companyX := stats.find(salary.TypeTrend, salary.DimWeeklyCompany, "X")
	require.NotNil(t, companyX)
	require.Equal(t, 3, companyX.Count)
	require.Equal(t, "20000.00", companyX.Value.StringFixed(2))

	require.Nil(t, stats.find(salary.TypeTrend, salary.DimWeeklyCompany, "Y"),
		"two samples are below the weekly floor")
}

func TestWeeklyTrendJob_SecondRunIsNoOp(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(2, "X", "Backend", "Shanghai", `{"base": 20000, "bonus": 0, "stock": 0}`),
		offer(3, "X", "Backend", "Shanghai", `{"base": 30000, "bonus": 0, "stock": 0}`),
	}}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunWeeklyTrend(context.Background()))
	firstCount := len(stats.rows)

	require.NoError(t, jobs.RunWeeklyTrend(context.Background()))
	require.Len(t, stats.rows, firstCount)
}

func TestMonthlyTrendJob_PreviousMonthWithFloor(t *testing.T) {
	offers := &fakeOfferSource{offers: []salary.Offer{
		offer(1, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(2, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(3, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(4, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(5, "X", "Backend", "Shanghai", `{"base": 10000, "bonus": 0, "stock": 0}`),
		offer(6, "Y", "Backend", "Beijing", `{"base": 50000, "bonus": 0, "stock": 0}`),
		offer(7, "Y", "Backend", "Beijing", `{"base": 50000, "bonus": 0, "stock": 0}`),
		offer(8, "Y", "Backend", "Beijing", `{"base": 50000, "bonus": 0, "stock": 0}`),
		offer(9, "Y", "Backend", "Beijing", `{"base": 50000, "bonus": 0, "stock": 0}`),
	}}
	stats := &fakeStatisticsStore{}
	jobs := newTestJobs(offers, stats)

	require.NoError(t, jobs.RunMonthlyTrend(context.Background()))

	// Previous full calendar month.
	require.Equal(t, "2025-02-01 00:00:00", offers.lastStart)
	require.Equal(t, "2025-02-28 23:59:59", offers.lastEnd)

	overall := stats.find(salary.TypeTrend, salary.DimMonthly, salary.DimensionValueAll)
	require.NotNil(t, overall)
	require.Equal(t, 9, overall.Count)
	require.Equal(t, "2025-02-28", overall.StatisticDate.Format(salary.DateLayout))

	require.NotNil(t, stats.find(salary.TypeTrend, salary.DimMonthlyCompany, "X"),
		"five samples meet the monthly floor")
	require.Nil(t, stats.find(salary.TypeTrend, salary.DimMonthlyCompany, "Y"),
		"four samples are below the monthly floor")
}

func TestCleanupJob_DeletesBeforeRetentionCutoff(t *testing.T) {
	old := &salary.Statistic{
		Type: salary.TypeSalary, Dimension: salary.DimCompany, DimensionValue: "X",
		StatisticDate: fixedNow.AddDate(0, 0, -400),
	}
	recent := &salary.Statistic{
		Type: salary.TypeSalary, Dimension: salary.DimCompany, DimensionValue: "Y",
		StatisticDate: fixedNow.AddDate(0, 0, -300),
	}
	stats := &fakeStatisticsStore{rows: []*salary.Statistic{old, recent}}
	jobs := newTestJobs(&fakeOfferSource{}, stats)

	require.NoError(t, jobs.RunCleanup(context.Background()))

	require.Len(t, stats.rows, 1)
	require.Equal(t, "Y", stats.rows[0].DimensionValue)
}

func TestJobOptions_Normalized(t *testing.T) {
	opts := JobOptions{}.normalized()
	require.Equal(t, defaultWeeklySampleFloor, opts.WeeklySampleFloor)
	require.Equal(t, defaultMonthlySampleFloor, opts.MonthlySampleFloor)

	custom := JobOptions{WeeklySampleFloor: 1, MonthlySampleFloor: 2}.normalized()
	require.Equal(t, 1, custom.WeeklySampleFloor)
	require.Equal(t, 2, custom.MonthlySampleFloor)
}
