package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	rediscommon "mamacare-sync/common/redis"
	"mamacare-sync/internal/models"
)

const globalTopic = "global"

// StreamPublisher appends change events to a Redis stream.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishChange(ctx context.Context, event models.ChangeEvent) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// Publisher is the MQTT publish surface; *mqtt.Client implements it.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher publishes change events to {prefix}/{child_id|global}.
type MQTTPublisher struct {
	client Publisher
	prefix string
	qos    byte
}

func NewMQTTPublisher(client Publisher, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: strings.TrimSuffix(prefix, "/"), qos: qos}
}

func (p *MQTTPublisher) PublishChange(_ context.Context, event models.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	return p.client.Publish(topicFor(p.prefix, event), p.qos, false, payload)
}

func topicFor(prefix string, event models.ChangeEvent) string {
	if event.ChildID == "" {
		return prefix + "/" + globalTopic
	}
	return prefix + "/" + event.ChildID
}
