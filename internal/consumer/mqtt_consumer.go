package consumer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mamacare-sync/common/mqtt"
)

// Subscriber is the MQTT subscription surface; *mqtt.Client implements it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// MQTTConsumer receives change events published under
// {prefix}/{child_id|global}.
type MQTTConsumer struct {
	client   Subscriber
	handler  ChangeHandler
	recorder Recorder
	logger   *zap.Logger
	prefix   string
	qos      byte

	ctx context.Context
}

func NewMQTTConsumer(client Subscriber, handler ChangeHandler, recorder Recorder, logger *zap.Logger, prefix string, qos byte) *MQTTConsumer {
	return &MQTTConsumer{
		client:   client,
		handler:  handler,
		recorder: recorder,
		logger:   logger,
		prefix:   strings.TrimSuffix(prefix, "/"),
		qos:      qos,
		ctx:      context.Background(),
	}
}

// Start subscribes and blocks until ctx is done.
func (c *MQTTConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	topic := c.prefix + "/#"
	if err := c.client.Subscribe(topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe change topic: %w", err)
	}
	c.logger.Info("MQTT change consumer started", zap.String("topic", topic))

	<-ctx.Done()

	if err := c.client.Unsubscribe(topic); err != nil {
		c.logger.Warn("Failed to unsubscribe change topic", zap.Error(err))
	}
	return nil
}

func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	event, err := decodeEvent(payload)
	if err != nil {
		c.record(OutcomeInvalid)
		return err
	}

	// the topic names the child when the payload does not
	if event.ChildID == "" {
		if childID := childFromTopic(c.prefix, topic); childID != "" {
			event.ChildID = childID
		}
	}

	c.record(outcome(c.handler.ApplyRemoteChange(c.ctx, event)))
	return nil
}

func (c *MQTTConsumer) record(outcome string) {
	if c.recorder != nil {
		c.recorder.ChangeEventConsumed("mqtt", outcome)
	}
}

// childFromTopic extracts the child id from {prefix}/{child_id}.
func childFromTopic(prefix, topic string) string {
	rest := strings.TrimPrefix(topic, prefix+"/")
	if rest == topic || rest == "" || rest == globalTopic || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}
