package postgres

// SQL for offer reads and statistics persistence.

const (
	// queryFindOffersByDateRange fetches offers created within the inclusive
	// bounds. Empty-string bounds leave that side unbounded, matching the
	// offer source contract.
	queryFindOffersByDateRange = `
		SELECT id, company_name, position, city, salary_structure, created_at
		FROM offers
		WHERE ($1 = '' OR created_at >= $1::timestamp)
		  AND ($2 = '' OR created_at <= $2::timestamp)
		ORDER BY created_at ASC, id ASC
	`

	// queryInsertStatistic writes one statistic row.
	// RETURNING retrieves the generated id for the caller.
	queryInsertStatistic = `
		INSERT INTO statistics (
			statistic_type, dimension, dimension_value,
			statistic_value, sample_count, statistic_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	// queryBatchInsertStatistic is the non-returning variant prepared once
	// per transaction for batch writes.
	queryBatchInsertStatistic = `
		INSERT INTO statistics (
			statistic_type, dimension, dimension_value,
			statistic_value, sample_count, statistic_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	queryFindByTypeAndDimension = `
		SELECT id, statistic_type, dimension, dimension_value,
		       statistic_value, sample_count, statistic_date, created_at
		FROM statistics
		WHERE statistic_type = $1
		  AND dimension = $2
		  AND statistic_date >= $3::date
		  AND statistic_date <= $4::date
		ORDER BY statistic_date ASC, id ASC
	`

	queryFindByTypeAndDimensionValue = `
		SELECT id, statistic_type, dimension, dimension_value,
		       statistic_value, sample_count, statistic_date, created_at
		FROM statistics
		WHERE statistic_type = $1
		  AND dimension = $2
		  AND dimension_value = $3
		  AND statistic_date >= $4::date
		  AND statistic_date <= $5::date
		ORDER BY statistic_date ASC, id ASC
	`

	// queryCheckStatisticsExists is the idempotency guard: a non-zero count
	// means the (type, dimension, date) period was already generated.
	queryCheckStatisticsExists = `
		SELECT COUNT(*)
		FROM statistics
		WHERE statistic_type = $1
		  AND dimension = $2
		  AND statistic_date = $3::date
	`

	// queryDeleteStatisticsBefore removes rows past the retention cutoff.
	queryDeleteStatisticsBefore = `
		DELETE FROM statistics
		WHERE statistic_date < $1::date
	`
)
