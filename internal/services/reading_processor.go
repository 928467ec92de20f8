package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/internal/infrastructure/buffer"
	"github.com/relichub/backend/repository"
	"github.com/relichub/backend/usecase"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// ReadingProcessor replays spilled sensor readings into the primary store
// once connectivity returns.
type ReadingProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repo    repository.ReadingRepository
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
}

func NewReadingProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repo repository.ReadingRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *ReadingProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rp := &ReadingProcessor{
		store:   store,
		monitor: monitor,
		repo:    repo,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := rp.Drain(ctx); err != nil {
			rp.logger.Error("reading buffer drain failed", zap.Error(err))
		}
	})

	return rp
}

// Start launches the cron scheduler.
func (rp *ReadingProcessor) Start() {
	if rp == nil || rp.cron == nil {
		return
	}
	rp.cron.Start()
	rp.logger.Info("reading processor started")
}

// Stop gracefully stops the scheduler.
func (rp *ReadingProcessor) Stop(ctx context.Context) {
	if rp == nil || rp.cron == nil {
		return
	}
	stopCtx := rp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rp.logger.Info("reading processor stopped")
}

// Drain replays buffered readings synchronously.
func (rp *ReadingProcessor) Drain(ctx context.Context) error {
	if rp == nil || rp.store == nil {
		return nil
	}
	if rp.monitor != nil && !rp.monitor.IsOnline() {
		rp.logger.Debug("skipping reading drain (offline)")
		return nil
	}

	items, err := rp.store.GetBatch(rp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := rp.processItem(ctx, item); err != nil {
			rp.logger.Error("failed to replay buffered reading",
				zap.String("item_id", item.ID),
				zap.String("sensor_id", item.SensorID),
				zap.Error(err))

			item.Retries++
			if item.Retries >= rp.cfg.MaxRetries {
				rp.logger.Warn("dropping buffered reading (max retries reached)", zap.String("item_id", item.ID))
				_ = rp.store.Remove(item)
				continue
			}

			if err := rp.store.Remove(item); err != nil {
				rp.logger.Warn("failed to remove buffered reading", zap.Error(err))
			}
			if err := rp.store.Requeue(item); err != nil {
				rp.logger.Error("failed to requeue buffered reading", zap.Error(err))
			}
			continue
		}

		if err := rp.store.Remove(item); err != nil {
			rp.logger.Warn("failed to purge replayed reading", zap.Error(err))
		}
	}
	return nil
}

// BufferReading attempts an immediate insert and falls back to persisting
// the reading in the spill buffer.
func (rp *ReadingProcessor) BufferReading(ctx context.Context, reading *domain.SensorReading) error {
	if rp == nil || rp.store == nil {
		return fmt.Errorf("reading processor not configured")
	}
	if reading == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        reading.ID,
		SensorID:  reading.SensorID,
		Data:      payload,
		Priority:  3,
		Timestamp: reading.RecordedAt,
	}

	if rp.monitor == nil || rp.monitor.IsOnline() {
		if err := rp.processItem(ctx, item); err == nil {
			return nil
		} else {
			rp.logger.Warn("immediate reading insert failed, buffering", zap.Error(err))
		}
	}
	return rp.store.Enqueue(item)
}

// Size returns the number of buffered readings.
func (rp *ReadingProcessor) Size() int {
	if rp == nil || rp.store == nil {
		return 0
	}
	size, err := rp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (rp *ReadingProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reading domain.SensorReading
	if err := json.Unmarshal(item.Data, &reading); err != nil {
		return err
	}
	return rp.repo.Insert(ctx, &reading)
}

var _ usecase.ReadingBuffer = (*ReadingProcessor)(nil)
