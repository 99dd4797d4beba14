package query

import "github.com/shopspring/decimal"

// SalaryQuery is the normalized input for the salary breakdown view.
// Blank fields take defaults: dimension COMPANY, end date today, start date
// one month back.
type SalaryQuery struct {
	Dimension string
	StartDate string
	EndDate   string
}

// TrendQuery is the normalized input for the trend view. Blank fields take
// defaults: type MONTHLY, dimension ALL, end date today, start date 12 months
// (monthly) or 12 weeks (weekly) back. DimensionValue is required when
// dimension is COMPANY.
type TrendQuery struct {
	Type           string
	Dimension      string
	DimensionValue string
	StartDate      string
	EndDate        string
}

// SalaryStatisticsResponse is the salary breakdown view: one item per stored
// aggregate row in range.
type SalaryStatisticsResponse struct {
	Dimension  string       `json:"dimension"`
	Statistics []SalaryItem `json:"statistics"`
}

// SalaryItem carries the stored average as the base figure plus a derived
// total figure (base times the configured multiplier — a display heuristic,
// not a recomputation).
type SalaryItem struct {
	DimensionValue string          `json:"dimension_value"`
	AvgBaseSalary  decimal.Decimal `json:"avg_base_salary"`
	AvgTotalSalary decimal.Decimal `json:"avg_total_salary"`
	Count          int             `json:"count"`
}

// TrendStatisticsResponse is the trend view: one item per period in range.
type TrendStatisticsResponse struct {
	Type           string      `json:"type"`
	Dimension      string      `json:"dimension"`
	DimensionValue string      `json:"dimension_value,omitempty"`
	Trends         []TrendItem `json:"trends"`
}

// TrendItem is one period's aggregate. Period is "yyyy-MM" for monthly rows
// and the full ISO date for weekly rows.
type TrendItem struct {
	Period    string          `json:"period"`
	Count     int             `json:"count"`
	AvgSalary decimal.Decimal `json:"avg_salary"`
}
