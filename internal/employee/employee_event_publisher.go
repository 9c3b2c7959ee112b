package employee

import (
	"context"
	"encoding/json"

	"github.com/Algoraver22/employee-hr-platform/internal/events"

	"github.com/segmentio/kafka-go"
)

// EventPublisher sends lifecycle events straight to the broker. It is used
// when the record store cannot share a transaction with the outbox table.
type EventPublisher interface {
	PublishLifecycle(ctx context.Context, event events.EmployeeLifecycleEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishLifecycle(context.Context, events.EmployeeLifecycleEvent) error {
	return nil
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaEventPublisher struct {
	writer MessageWriter
}

func NewKafkaEventPublisher(writer MessageWriter) EventPublisher {
	if writer == nil {
		return noopEventPublisher{}
	}
	return &kafkaEventPublisher{writer: writer}
}

func (p *kafkaEventPublisher) PublishLifecycle(
	ctx context.Context,
	event events.EmployeeLifecycleEvent,
) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(lifecycleAggregate)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafka.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   events.EmployeeLifecycleTopic,
		Key:     []byte(event.EmployeeID),
		Value:   payload,
		Headers: headers,
	})
}
