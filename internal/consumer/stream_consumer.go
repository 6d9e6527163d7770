package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	rediscommon "mamacare-sync/common/redis"
	"mamacare-sync/internal/models"
)

// StreamConsumer reads change events from a Redis stream through a consumer
// group and applies them.
type StreamConsumer struct {
	redisClient  *redis.Client
	handler      ChangeHandler
	recorder     Recorder
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

func NewStreamConsumer(
	redisClient *redis.Client,
	handler ChangeHandler,
	recorder Recorder,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *StreamConsumer {
	return &StreamConsumer{
		redisClient:  redisClient,
		handler:      handler,
		recorder:     recorder,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        5 * time.Second,
	}
}

// Start consumes until ctx is done, backing off exponentially on read
// errors (1s doubling up to 30s).
func (c *StreamConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Change consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := c.consumeEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to consume change events",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

// consumeEvents processes one batch and returns how many messages it read.
// Unparseable messages are acked so they do not come back.
func (c *StreamConsumer) consumeEvents(ctx context.Context) (int, error) {
	messages, err := rediscommon.ReadFromStream(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.batchSize, c.block)
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		event, err := parseStreamEvent(msg)
		if err != nil {
			c.logger.Warn("Dropping malformed change event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			c.record(OutcomeInvalid)
		} else {
			c.record(outcome(c.handler.ApplyRemoteChange(ctx, event)))
		}

		if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return len(messages), nil
}

func (c *StreamConsumer) record(outcome string) {
	if c.recorder != nil {
		c.recorder.ChangeEventConsumed("stream", outcome)
	}
}

// parseStreamEvent reads the JSON "data" field written by
// PublishJSONToStream, falling back to flat fields.
func parseStreamEvent(msg rediscommon.StreamMessage) (models.ChangeEvent, error) {
	if data, ok := msg.Values["data"].(string); ok {
		return decodeEvent([]byte(data))
	}

	var event models.ChangeEvent
	event.EventType, _ = msg.Values["event_type"].(string)
	event.ChildID, _ = msg.Values["child_id"].(string)
	event.EntityID, _ = msg.Values["entity_id"].(string)
	event.Origin, _ = msg.Values["origin"].(string)
	if event.EventType == "" {
		return event, fmt.Errorf("invalid change event: missing event_type")
	}
	return event, nil
}
