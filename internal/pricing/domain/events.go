package domain

import (
	"context"
	"time"
)

const PriceReindexedEventType = "PriceReindexed"

// PriceReindexedEvent a stored price was rewritten from the catalog.
type PriceReindexedEvent struct {
	ProductID  uint      `json:"product_id"`
	SKU        string    `json:"sku"`
	MatchedSKU string    `json:"matched_sku"`
	Currency   string    `json:"currency"`
	OldPrice   string    `json:"old_price"`
	NewPrice   string    `json:"new_price"`
	OccurredOn time.Time `json:"occurred_on"`
}

// EventPublisher publishes pricing events.
type EventPublisher interface {
	PublishPriceReindexed(ctx context.Context, event PriceReindexedEvent) error
}
