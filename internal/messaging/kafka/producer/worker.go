package producer

import (
	"context"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	outboxBatchSize = 50

	// Sent rows are kept for a week for inspection, then purged hourly.
	SentRetention       = 7 * 24 * time.Hour
	outboxPurgeEvery    = time.Hour
	defaultPollInterval = 3 * time.Second
)

// ProcessOutboxEvents drains due outbox rows to Kafka every pollInterval
// until ctx is cancelled.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	log := logger.Named("kafka.producer.worker")
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()
	purge := time.NewTicker(outboxPurgeEvery)
	defer purge.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-poll.C:
			if _, err := ProcessPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		case now := <-purge.C:
			PurgeSentEvents(ctx, repo, now, log)
		}
	}
}

// ProcessPendingEvents publishes one batch and returns how many events were
// marked sent. A failed publish is recorded on the row and does not stop the
// batch.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) (int, error) {
	due, err := repo.ListPending(ctx, outboxBatchSize)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	logger.Debug("draining outbox batch", zap.Int("count", len(due)))

	sent := 0
	for _, ev := range due {
		fields := []zap.Field{
			zap.String("outbox_id", ev.ID),
			zap.String("request_id", ev.RequestID),
			zap.String("event_type", ev.EventType),
			zap.String("employee_id", ev.AggregateID),
		}

		if err := publishEvent(ctx, writer, ev); err != nil {
			logger.Warn("publish outbox event failed",
				append(fields, zap.Int("attempt", ev.RetryCount+1), zap.Error(err))...,
			)
			if ev.RetryCount+1 >= kafka.MaxOutboxAttempts {
				logger.Error("outbox event exhausted its attempts", fields...)
			}
			if markErr := repo.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
				logger.Error("record outbox failure failed", append(fields, zap.Error(markErr))...)
			}
			continue
		}

		if err := repo.MarkSent(ctx, ev.ID); err != nil {
			// The row stays due and will be sent again; consumers must
			// tolerate the duplicate.
			logger.Error("mark outbox sent failed", append(fields, zap.Error(err))...)
			continue
		}

		sent++
		logger.Info("outbox event sent", fields...)
	}

	return sent, nil
}

// PurgeSentEvents removes sent rows older than SentRetention.
func PurgeSentEvents(ctx context.Context, repo kafka.OutboxRepository, now time.Time, logger *zap.Logger) {
	n, err := repo.PurgeSent(ctx, now.Add(-SentRetention))
	if err != nil {
		logger.Warn("purge sent outbox events failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("purged sent outbox events", zap.Int64("count", n))
	}
}
