package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/Algoraver22/employee-hr-platform/internal/config"
	"github.com/Algoraver22/employee-hr-platform/internal/dashboard"
	"github.com/Algoraver22/employee-hr-platform/internal/events"
	"github.com/Algoraver22/employee-hr-platform/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const lifecycleConsumerGroup = "employee-hr-platform-dashboard"

// RunConsumer reads employee lifecycle events and keeps the dashboard
// statistics snapshot warm until SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openRecordStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close(context.Background())

	rdb := openRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	statsService := dashboard.NewService(store.repo, rdb, 0, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        lifecycleConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	consumer.ConsumeEmployeeLifecycle(ctx, reader, statsService, logger)

	logger.Info("consumer shutting down")
	return nil
}
