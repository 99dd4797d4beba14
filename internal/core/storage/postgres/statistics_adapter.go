package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/offershow-lab/offershow/internal/core/salary"
	"github.com/shopspring/decimal"
)

// StatisticsAdapter implements storage.StatisticsStore using PostgreSQL.
// BatchInsert writes all rows in a single transaction so a dimension batch
// lands whole or not at all.
type StatisticsAdapter struct {
	db *sql.DB
}

// NewStatisticsAdapter creates a new StatisticsAdapter sharing the given connection.
func NewStatisticsAdapter(db *sql.DB) *StatisticsAdapter {
	return &StatisticsAdapter{db: db}
}

// Insert writes a single statistic row and fills in its generated id.
func (a *StatisticsAdapter) Insert(ctx context.Context, stat *salary.Statistic) error {
	err := a.db.QueryRowContext(ctx, queryInsertStatistic,
		stat.Type,
		stat.Dimension,
		stat.DimensionValue,
		stat.Value,
		stat.Count,
		stat.StatisticDate,
		stat.CreatedAt,
	).Scan(&stat.ID)
	if err != nil {
		return fmt.Errorf("insert statistic: %w", err)
	}
	return nil
}

// BatchInsert writes all rows in one transaction with a prepared statement.
func (a *StatisticsAdapter) BatchInsert(ctx context.Context, stats []*salary.Statistic) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("batch insert statistics: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryBatchInsertStatistic)
	if err != nil {
		return fmt.Errorf("batch insert statistics: prepare: %w", err)
	}
	defer stmt.Close()

	for _, stat := range stats {
		if _, err := stmt.ExecContext(ctx,
			stat.Type,
			stat.Dimension,
			stat.DimensionValue,
			stat.Value,
			stat.Count,
			stat.StatisticDate,
			stat.CreatedAt,
		); err != nil {
			return fmt.Errorf("batch insert statistics: insert %s/%s/%s: %w",
				stat.Type, stat.Dimension, stat.DimensionValue, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("batch insert statistics: commit: %w", err)
	}

	slog.Info("[StatisticsAdapter] Batch inserted", "rows", len(stats))
	return nil
}

// FindByTypeAndDimension returns rows for (type, dimension) with
// statistic_date in [start, end], ordered by statistic_date ascending.
func (a *StatisticsAdapter) FindByTypeAndDimension(
	ctx context.Context,
	statType, dimension, start, end string,
) ([]salary.Statistic, error) {
	rows, err := a.db.QueryContext(ctx, queryFindByTypeAndDimension,
		statType, dimension, start, end)
	if err != nil {
		return nil, fmt.Errorf("find statistics by type and dimension: %w", err)
	}
	defer rows.Close()

	return collectStatisticRows(rows)
}

// FindByTypeAndDimensionValue narrows the range query to one dimension value.
func (a *StatisticsAdapter) FindByTypeAndDimensionValue(
	ctx context.Context,
	statType, dimension, dimensionValue, start, end string,
) ([]salary.Statistic, error) {
	rows, err := a.db.QueryContext(ctx, queryFindByTypeAndDimensionValue,
		statType, dimension, dimensionValue, start, end)
	if err != nil {
		return nil, fmt.Errorf("find statistics by dimension value: %w", err)
	}
	defer rows.Close()

	return collectStatisticRows(rows)
}

// CheckExists counts rows for the (type, dimension, date) idempotency key.
func (a *StatisticsAdapter) CheckExists(ctx context.Context, statType, dimension, date string) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx, queryCheckStatisticsExists,
		statType, dimension, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("check statistics exists: %w", err)
	}
	return count, nil
}

// DeleteBefore removes rows dated strictly before date.
func (a *StatisticsAdapter) DeleteBefore(ctx context.Context, date string) (int64, error) {
	result, err := a.db.ExecContext(ctx, queryDeleteStatisticsBefore, date)
	if err != nil {
		return 0, fmt.Errorf("delete statistics before %s: %w", date, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete statistics before %s: rows affected: %w", date, err)
	}
	return deleted, nil
}

func collectStatisticRows(rows *sql.Rows) ([]salary.Statistic, error) {
	var stats []salary.Statistic
	for rows.Next() {
		stat, err := scanStatisticRow(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate statistic rows: %w", err)
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanStatisticRow scans a database row into a Statistic.
// NUMERIC values arrive as strings and are parsed into decimals.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanStatisticRow(row scanner) (*salary.Statistic, error) {
	var stat salary.Statistic
	var valueStr string

	if err := row.Scan(
		&stat.ID,
		&stat.Type,
		&stat.Dimension,
		&stat.DimensionValue,
		&valueStr,
		&stat.Count,
		&stat.StatisticDate,
		&stat.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan statistic row: %w", err)
	}

	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return nil, fmt.Errorf("parse statistic value %q: %w", valueStr, err)
	}
	stat.Value = value

	return &stat, nil
}
