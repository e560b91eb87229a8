package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shareit/service-shareit/internal/pkg/kafka"
	"go.uber.org/zap"
)

// BookingEventHandler receives one decoded booking lifecycle event.
type BookingEventHandler func(ctx context.Context, eventType string, evt BookingEvent) error

// BookingEventConsumer reads booking.events and hands each lifecycle event to a handler.
type BookingEventConsumer struct {
	consumer *kafka.Consumer
	handler  BookingEventHandler
	logger   *zap.Logger
}

// NewBookingEventConsumer creates a consumer in the given group.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	topic string,
	handler BookingEventHandler,
	logger *zap.Logger,
) *BookingEventConsumer {
	if topic == "" {
		topic = TopicBookingEvents
	}
	return &BookingEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, topic, logger),
		handler:  handler,
		logger:   logger,
	}
}

// Start blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed messages are skipped, not retried
	}

	switch ce.Type {
	case BookingCreated, BookingApproved, BookingRejected:
	default:
		c.logger.Debug("ignoring unhandled booking event type", zap.String("type", ce.Type))
		return nil
	}

	var evt BookingEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse booking event data",
			zap.String("type", ce.Type),
			zap.Error(err),
		)
		return nil
	}
	return c.handler(ctx, ce.Type, evt)
}
