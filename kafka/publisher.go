package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/lienduong188/finance-tracker-sub000/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishPlanCreated publishes a plan created event with tracing
func (p *Publisher) PublishPlanCreated(ctx context.Context, event PlanCreatedEvent) error {
	event.EventType = EventTypePlanCreated
	event.EventID = newEventID(event.EventID)
	event.Timestamp = time.Now()
	return p.publish(ctx, event.EventType, event.EventID, event.PlanID, event)
}

// PublishPaymentPaid publishes a payment paid event with tracing
func (p *Publisher) PublishPaymentPaid(ctx context.Context, event PaymentPaidEvent) error {
	event.EventType = EventTypePaymentPaid
	event.EventID = newEventID(event.EventID)
	event.Timestamp = time.Now()
	return p.publish(ctx, event.EventType, event.EventID, event.PlanID, event)
}

// PublishPlanCompleted publishes a plan completed event with tracing
func (p *Publisher) PublishPlanCompleted(ctx context.Context, event PlanCompletedEvent) error {
	event.EventType = EventTypePlanCompleted
	event.EventID = newEventID(event.EventID)
	event.Timestamp = time.Now()
	return p.publish(ctx, event.EventType, event.EventID, event.PlanID, event)
}

// PublishPlanCancelled publishes a plan cancelled event with tracing
func (p *Publisher) PublishPlanCancelled(ctx context.Context, event PlanCancelledEvent) error {
	event.EventType = EventTypePlanCancelled
	event.EventID = newEventID(event.EventID)
	event.Timestamp = time.Now()
	return p.publish(ctx, event.EventType, event.EventID, event.PlanID, event)
}

// PublishPaymentsOverdue publishes a sweep outcome event with tracing
func (p *Publisher) PublishPaymentsOverdue(ctx context.Context, event PaymentsOverdueEvent) error {
	event.EventType = EventTypePaymentsOverdue
	event.EventID = newEventID(event.EventID)
	event.Timestamp = time.Now()
	return p.publish(ctx, event.EventType, event.EventID, "sweep", event)
}

// publish sends one event to the plan events topic. The message key is
// the plan ID, so all events of one plan land on the same partition in
// order.
func (p *Publisher) publish(ctx context.Context, eventType, eventID, key string, event interface{}) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicPlanEvents),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{
			Key:   []byte("event_type"),
			Value: []byte(eventType),
		},
		{
			Key:   []byte("event_id"),
			Value: []byte(eventID),
		},
	}
	for headerKey, headerValue := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(headerKey),
			Value: []byte(headerValue),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicPlanEvents,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", TopicPlanEvents).
			Str("event_type", eventType).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Logger.Info().
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", TopicPlanEvents).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("trace_id", span.SpanContext().TraceID().String()).
		Msg("Plan event published")

	return nil
}

func newEventID(existing string) string {
	if existing != "" {
		return existing
	}
	return fmt.Sprintf("evt_%d", time.Now().UnixNano())
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
