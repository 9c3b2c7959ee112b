package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Algoraver22/employee-hr-platform/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// StatsRefresher recomputes derived employee aggregates.
type StatsRefresher interface {
	Refresh(ctx context.Context) error
}

func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	refresher StatsRefresher,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		event, err := HandleLifecycleMessage(ctx, msg, refresher)
		if err != nil {
			log.Error("handle employee lifecycle message failed",
				zap.Int64("offset", msg.Offset),
				zap.String("employee_id", event.EmployeeID),
				zap.Error(err),
			)
			if !isDecodeError(err) {
				// left uncommitted; the next event triggers another refresh
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
			continue
		}

		if event.EventType != "" {
			log.Info("dashboard stats refreshed from lifecycle event",
				zap.String("event_type", event.EventType),
				zap.String("employee_id", event.EmployeeID),
				zap.String("request_id", event.RequestID),
			)
		}
	}
}

type decodeError struct{ err error }

func (e decodeError) Error() string { return fmt.Sprintf("decode lifecycle event: %v", e.err) }
func (e decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de decodeError
	return errors.As(err, &de)
}

// HandleLifecycleMessage decodes one message and refreshes the stats. Unknown
// event types are ignored.
func HandleLifecycleMessage(ctx context.Context, msg kafkago.Message, refresher StatsRefresher) (events.EmployeeLifecycleEvent, error) {
	var event events.EmployeeLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return event, decodeError{err: err}
	}

	switch event.EventType {
	case events.EmployeeCreated, events.EmployeeUpdated, events.EmployeeDeleted:
	default:
		return events.EmployeeLifecycleEvent{}, nil
	}

	return event, refresher.Refresh(ctx)
}
