package usecase

import (
	"context"

	"github.com/relichub/backend/domain"
)

// ReadingBuffer abstracts the offline spill buffer so the ingestion use case
// stays storage-agnostic.
type ReadingBuffer interface {
	BufferReading(ctx context.Context, reading *domain.SensorReading) error
}
