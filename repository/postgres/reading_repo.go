package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type readingRepository struct {
	pool *pgxpool.Pool
}

// NewReadingRepository returns a Postgres-backed sensor reading repository.
func NewReadingRepository(pool *pgxpool.Pool) repository.ReadingRepository {
	return &readingRepository{pool: pool}
}

const insertReadingQuery = `
INSERT INTO sensor_readings (id, sensor_id, relic_id, metric, value, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
`

func (r *readingRepository) Insert(ctx context.Context, reading *domain.SensorReading) error {
	if reading == nil || !reading.IsValid() {
		return domain.ErrInvalidPayload
	}
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, insertReadingQuery,
		reading.ID,
		reading.SensorID,
		reading.RelicID,
		reading.Metric,
		reading.Value,
		reading.RecordedAt,
	)
	return err
}

func (r *readingRepository) InsertBatch(ctx context.Context, readings []domain.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range readings {
		reading := &readings[i]
		if !reading.IsValid() {
			return domain.ErrInvalidPayload
		}
		if reading.ID == "" {
			reading.ID = uuid.NewString()
		}
		batch.Queue(insertReadingQuery,
			reading.ID,
			reading.SensorID,
			reading.RelicID,
			reading.Metric,
			reading.Value,
			reading.RecordedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range readings {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *readingRepository) List(ctx context.Context, filter repository.ReadingFilter) ([]domain.SensorReading, error) {
	const query = `
	SELECT id, sensor_id, relic_id, metric, value, recorded_at
	FROM sensor_readings
	WHERE ($1 = '' OR sensor_id = $1)
	  AND ($2 = '' OR metric = $2)
	ORDER BY recorded_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.SensorID, filter.Metric, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []domain.SensorReading
	for rows.Next() {
		var reading domain.SensorReading
		if err := rows.Scan(
			&reading.ID,
			&reading.SensorID,
			&reading.RelicID,
			&reading.Metric,
			&reading.Value,
			&reading.RecordedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
