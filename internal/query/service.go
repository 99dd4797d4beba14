package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/offershow-lab/offershow/internal/core/salary"
	"github.com/offershow-lab/offershow/internal/core/storage"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid statistics query")

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}

const monthlyPeriodLayout = "2006-01"

// defaultTotalMultiplier is the assumed base-to-total compensation ratio used
// to derive the total figure in the salary view. Empirically total packages
// run 1.8-2.5x base; 2.2 is the shipped midpoint.
var defaultTotalMultiplier = decimal.RequireFromString("2.2")

// Service is the statistics read path. It validates and defaults request
// parameters, reads pre-computed rows from the store, and reshapes them into
// the salary breakdown or trend view. It never recomputes from raw offers.
type Service struct {
	stats           storage.StatisticsStore
	totalMultiplier decimal.Decimal
	nowFn           func() time.Time
}

// NewService creates a query service. A zero multiplier falls back to the
// default ratio.
func NewService(stats storage.StatisticsStore, totalMultiplier decimal.Decimal) *Service {
	if totalMultiplier.LessThanOrEqual(decimal.Zero) {
		totalMultiplier = defaultTotalMultiplier
	}
	return &Service{
		stats:           stats,
		totalMultiplier: totalMultiplier,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GetSalaryStatistics serves the salary breakdown view for one dimension.
func (s *Service) GetSalaryStatistics(ctx context.Context, q SalaryQuery) (*SalaryStatisticsResponse, error) {
	dimension := strings.ToUpper(strings.TrimSpace(q.Dimension))
	if dimension == "" {
		dimension = salary.DimCompany
	}
	switch dimension {
	case salary.DimCompany, salary.DimPosition, salary.DimCity:
	default:
		return nil, invalidQueryf("unsupported statistics dimension: %s", q.Dimension)
	}

	now := s.nowFn()
	endDate := q.EndDate
	if strings.TrimSpace(endDate) == "" {
		endDate = now.Format(salary.DateLayout)
	}
	startDate := q.StartDate
	if strings.TrimSpace(startDate) == "" {
		startDate = now.AddDate(0, -1, 0).Format(salary.DateLayout)
	}

	rows, err := s.stats.FindByTypeAndDimension(ctx, salary.TypeSalary, dimension, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query salary statistics: %w", err)
	}

	items := make([]SalaryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, SalaryItem{
			DimensionValue: row.DimensionValue,
			AvgBaseSalary:  row.Value,
			AvgTotalSalary: row.Value.Mul(s.totalMultiplier).Round(2),
			Count:          row.Count,
		})
	}

	return &SalaryStatisticsResponse{
		Dimension:  dimension,
		Statistics: items,
	}, nil
}

// GetTrendStatistics serves the trend view, either overall (dimension ALL)
// or for one company (dimension COMPANY plus a dimension value).
func (s *Service) GetTrendStatistics(ctx context.Context, q TrendQuery) (*TrendStatisticsResponse, error) {
	trendType := strings.ToUpper(strings.TrimSpace(q.Type))
	if trendType == "" {
		trendType = salary.DimMonthly
	}
	if trendType != salary.DimMonthly && trendType != salary.DimWeekly {
		return nil, invalidQueryf("unsupported trend type: %s", q.Type)
	}

	dimension := strings.ToUpper(strings.TrimSpace(q.Dimension))
	if dimension == "" {
		dimension = salary.DimensionValueAll
	}
	if dimension != salary.DimensionValueAll && dimension != salary.DimCompany {
		return nil, invalidQueryf("unsupported trend dimension: %s", q.Dimension)
	}

	now := s.nowFn()
	endDate := q.EndDate
	if strings.TrimSpace(endDate) == "" {
		endDate = now.Format(salary.DateLayout)
	}
	startDate := q.StartDate
	if strings.TrimSpace(startDate) == "" {
		if trendType == salary.DimMonthly {
			startDate = now.AddDate(0, -12, 0).Format(salary.DateLayout)
		} else {
			startDate = now.AddDate(0, 0, -12*7).Format(salary.DateLayout)
		}
	}

	var (
		rows []salary.Statistic
		err  error
	)
	if dimension == salary.DimensionValueAll {
		rows, err = s.stats.FindByTypeAndDimension(ctx, salary.TypeTrend, trendType, startDate, endDate)
	} else {
		if strings.TrimSpace(q.DimensionValue) == "" {
			return nil, invalidQueryf("dimension value is required for dimension %s", dimension)
		}
		// Composite dimension mirrors how the jobs write per-company rows:
		// WEEKLY_COMPANY, MONTHLY_COMPANY.
		fullDimension := trendType + "_" + dimension
		rows, err = s.stats.FindByTypeAndDimensionValue(
			ctx, salary.TypeTrend, fullDimension, q.DimensionValue, startDate, endDate)
	}
	if err != nil {
		return nil, fmt.Errorf("query trend statistics: %w", err)
	}

	trends := make([]TrendItem, 0, len(rows))
	for _, row := range rows {
		trends = append(trends, TrendItem{
			Period:    formatPeriod(row.StatisticDate, trendType),
			Count:     row.Count,
			AvgSalary: row.Value,
		})
	}

	return &TrendStatisticsResponse{
		Type:           trendType,
		Dimension:      dimension,
		DimensionValue: q.DimensionValue,
		Trends:         trends,
	}, nil
}

// formatPeriod renders a statistic date as its period label: year-month for
// monthly rows, the window's end date for weekly rows.
func formatPeriod(date time.Time, trendType string) string {
	if trendType == salary.DimMonthly {
		return date.Format(monthlyPeriodLayout)
	}
	return date.Format(salary.DateLayout)
}
