// Package ingest accepts sensor readings relayed from the showcase
// monitors. Writes go straight to the store; when it is unreachable the
// reading spills into the offline buffer and is drained later.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
	"github.com/relichub/backend/usecase"
)

type UseCase struct {
	readings repository.ReadingRepository
	buffer   usecase.ReadingBuffer
	logger   *zap.Logger
}

func New(readings repository.ReadingRepository, buffer usecase.ReadingBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		readings: readings,
		buffer:   buffer,
		logger:   logger,
	}
}

// Record persists one reading, spilling to the buffer on store failure.
func (uc *UseCase) Record(ctx context.Context, reading *domain.SensorReading) error {
	if reading == nil || !reading.IsValid() {
		return domain.ErrInvalidPayload
	}
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.RecordedAt.IsZero() {
		reading.RecordedAt = time.Now()
	}

	if err := uc.readings.Insert(ctx, reading); err != nil {
		if uc.buffer == nil {
			return err
		}
		if bufErr := uc.buffer.BufferReading(ctx, reading); bufErr != nil {
			uc.logger.Error("failed to buffer sensor reading", zap.Error(bufErr))
			return err
		}
		uc.logger.Warn("sensor reading buffered", zap.String("sensor_id", reading.SensorID), zap.Error(err))
	}
	return nil
}

// Recent lists the latest readings matching the filter.
func (uc *UseCase) Recent(ctx context.Context, filter repository.ReadingFilter) ([]domain.SensorReading, error) {
	return uc.readings.List(ctx, filter)
}
