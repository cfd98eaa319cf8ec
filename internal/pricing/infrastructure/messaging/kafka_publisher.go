// Package messaging publishes pricing events to Kafka.
package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
)

// MessageSender is satisfied by *mq.KafkaProducer.
type MessageSender interface {
	SendMessage(ctx context.Context, topic, key string, value any) error
}

// envelope wraps each event with its type so consumers can route on it.
type envelope struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

// KafkaEventPublisher implements domain.EventPublisher.
type KafkaEventPublisher struct {
	sender MessageSender
	topic  string
}

func NewKafkaEventPublisher(sender MessageSender, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{sender: sender, topic: topic}
}

// PublishPriceReindexed keys the message by product id so updates to one product stay ordered.
func (p *KafkaEventPublisher) PublishPriceReindexed(ctx context.Context, event domain.PriceReindexedEvent) error {
	key := strconv.FormatUint(uint64(event.ProductID), 10)
	return p.sender.SendMessage(ctx, p.topic, key, envelope{EventType: domain.PriceReindexedEventType, Payload: event})
}
