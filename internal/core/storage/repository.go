package storage

import (
	"context"

	"github.com/offershow-lab/offershow/internal/core/salary"
)

// OfferSource is the read-only provider of raw offer records.
// The statistics jobs are its only consumer; offer CRUD lives elsewhere.
type OfferSource interface {
	// FindByDateRange fetches offers created within [start, end], both bounds
	// "yyyy-MM-dd HH:mm:ss" strings. An empty bound leaves that side unbounded.
	FindByDateRange(ctx context.Context, start, end string) ([]salary.Offer, error)
}

// StatisticsStore persists pre-computed statistic rows.
//
// Uniqueness per (type, dimension, statistic_date) is enforced by CheckExists
// before writing, not by a storage constraint — writers other than the
// scheduled jobs must not bypass that check.
type StatisticsStore interface {
	Insert(ctx context.Context, stat *salary.Statistic) error

	// BatchInsert writes all rows in a single transaction.
	BatchInsert(ctx context.Context, stats []*salary.Statistic) error

	// FindByTypeAndDimension returns rows for the (type, dimension) key with
	// statistic_date in [start, end], ordered by statistic_date ascending.
	// Bounds are "yyyy-MM-dd" strings.
	FindByTypeAndDimension(ctx context.Context, statType, dimension, start, end string) ([]salary.Statistic, error)

	// FindByTypeAndDimensionValue narrows FindByTypeAndDimension to a single
	// dimension value (one company's trend rows).
	FindByTypeAndDimensionValue(ctx context.Context, statType, dimension, dimensionValue, start, end string) ([]salary.Statistic, error)

	// CheckExists returns the number of rows for (type, dimension, date).
	// A non-zero count means the period was already generated.
	CheckExists(ctx context.Context, statType, dimension, date string) (int, error)

	// DeleteBefore removes all rows with statistic_date earlier than date and
	// returns the number deleted.
	DeleteBefore(ctx context.Context, date string) (int64, error)
}
