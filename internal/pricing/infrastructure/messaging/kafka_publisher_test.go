package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/catalogpricing/pkg/mq"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishPriceReindexed(t *testing.T) {
	w := &recordingWriter{}
	pub := NewKafkaEventPublisher(mq.NewProducerWithWriter(w), "product.price.reindexed")

	event := domain.PriceReindexedEvent{
		ProductID:  42,
		SKU:        "COIN-A",
		MatchedSKU: "AGE-1OZ",
		Currency:   "USD",
		OldPrice:   "50.00",
		NewPrice:   "48.10",
		OccurredOn: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := pub.PublishPriceReindexed(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if msg.Topic != "product.price.reindexed" || string(msg.Key) != "42" {
		t.Errorf("topic %q key %q", msg.Topic, msg.Key)
	}

	var got struct {
		EventType string                     `json:"event_type"`
		Payload   domain.PriceReindexedEvent `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatal(err)
	}
	if got.EventType != domain.PriceReindexedEventType || got.Payload.ProductID != 42 || got.Payload.NewPrice != "48.10" || !got.Payload.OccurredOn.Equal(event.OccurredOn) {
		t.Errorf("decoded = %+v", got)
	}
}
