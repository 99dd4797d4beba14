package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Statistic types.
const (
	TypeSalary = "SALARY"
	TypeTrend  = "TREND"
)

// Salary dimensions (grouping axes for TypeSalary rows).
const (
	DimCompany  = "COMPANY"
	DimPosition = "POSITION"
	DimCity     = "CITY"
)

// Trend dimensions (granularity axes for TypeTrend rows).
// The *_COMPANY variants hold per-company rows for the same window.
const (
	DimWeekly         = "WEEKLY"
	DimMonthly        = "MONTHLY"
	DimWeeklyCompany  = "WEEKLY_COMPANY"
	DimMonthlyCompany = "MONTHLY_COMPANY"
)

// DimensionValueAll marks the aggregate ("all companies") trend rows.
const DimensionValueAll = "ALL"

// DateLayout is the calendar-date format used for statistic_date and for
// date bounds exchanged with the stores.
const DateLayout = "2006-01-02"

// TimestampLayout is the format for offer created_at range bounds.
const TimestampLayout = "2006-01-02 15:04:05"

// Offer is a read-only job-offer record as served by the offer source.
// SalaryStructure is a raw JSON object with named numeric components,
// at least "base", "bonus" and "stock".
type Offer struct {
	ID              int64
	CompanyName     string
	Position        string
	City            string
	SalaryStructure string
	CreatedAt       time.Time
}

// Statistic is one pre-computed aggregate row. Rows are written once by the
// scheduled jobs and never updated in place; the retention job deletes them
// past the cutoff.
type Statistic struct {
	ID             int64
	Type           string
	Dimension      string
	DimensionValue string
	Value          decimal.Decimal
	Count          int
	StatisticDate  time.Time
	CreatedAt      time.Time
}
