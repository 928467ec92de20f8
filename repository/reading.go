package repository

import (
	"context"

	"github.com/relichub/backend/domain"
)

type ReadingFilter struct {
	SensorID string
	Metric   string
	Limit    int
	Offset   int
}

type ReadingRepository interface {
	Insert(ctx context.Context, reading *domain.SensorReading) error
	InsertBatch(ctx context.Context, readings []domain.SensorReading) error
	List(ctx context.Context, filter ReadingFilter) ([]domain.SensorReading, error)
}
