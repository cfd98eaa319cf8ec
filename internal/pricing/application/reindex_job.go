package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/catalogpricing/pkg/config"
	"github.com/wyfcoding/catalogpricing/pkg/metrics"
)

const defaultPageSize = 500

// ReindexJob periodically rewrites stored product prices with the lowest
// catalog price so host-side sorting and filtering stay meaningful.
type ReindexJob struct {
	repo      domain.ProductRepository
	resolver  CatalogResolver
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	currency  string
	cfg       config.ReindexConfig
	now       func() time.Time
}

// NewReindexJob publisher and m may be nil.
func NewReindexJob(
	repo domain.ProductRepository,
	resolver CatalogResolver,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	currency string,
	cfg config.ReindexConfig,
) *ReindexJob {
	return &ReindexJob{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		currency:  currency,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start schedules Run every interval_minutes and blocks until ctx is done.
// A run still in progress when the next tick fires is skipped.
func (j *ReindexJob) Start(ctx context.Context) error {
	log := cronLogger{j.logger}
	c := cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)))
	schedule := fmt.Sprintf("@every %s", j.cfg.Interval())
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			j.logger.Error("price reindex failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule reindex: %w", err)
	}

	c.Start()
	j.logger.Info("price reindex job started", "schedule", schedule, "statuses", j.cfg.Statuses)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Run makes one pass over every product in the configured statuses.
func (j *ReindexJob) Run(ctx context.Context) (result ReindexResult, err error) {
	start := j.now()
	defer func() {
		j.metrics.RecordReindex(result.Updated, err)
		j.logger.Info("price reindex finished",
			"scanned", result.Scanned, "matched", result.Matched, "updated", result.Updated,
			"duration", time.Since(start), "error", err)
	}()

	limit := j.cfg.PageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	for offset := 0; ; offset += limit {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		products, err := j.repo.ListByStatus(ctx, j.cfg.Statuses, offset, limit)
		if err != nil {
			return result, fmt.Errorf("list products at offset %d: %w", offset, err)
		}

		for _, p := range products {
			result.Scanned++
			if p.IsVariable() {
				err = j.reindexVariations(ctx, p, &result)
			} else {
				err = j.reindexOne(ctx, p, p.CandidateSKUs(), &result)
			}
			if err != nil {
				return result, err
			}
		}

		if len(products) < limit {
			return result, nil
		}
	}
}

func (j *ReindexJob) reindexVariations(ctx context.Context, parent *domain.Product, result *ReindexResult) error {
	variations, err := j.repo.ListVariations(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("list variations of %d: %w", parent.ID, err)
	}
	for _, v := range variations {
		if err := j.reindexOne(ctx, v, v.CandidateSKUs(), result); err != nil {
			return err
		}
	}
	return nil
}

func (j *ReindexJob) reindexOne(ctx context.Context, p *domain.Product, candidates []string, result *ReindexResult) error {
	record, err := j.resolver.Resolve(ctx, j.currency, candidates...)
	if err != nil {
		if errors.Is(err, catalog.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	price, ok := domain.LowestPossiblePrice(record)
	if !ok {
		return nil
	}
	result.Matched++

	old := p.Price
	if !p.ApplyCatalogPrice(price) {
		return nil
	}
	if err := j.repo.UpdatePrices(ctx, p); err != nil {
		return fmt.Errorf("update prices of %d: %w", p.ID, err)
	}
	result.Updated++
	j.publish(ctx, p, record.SKU, old, price)
	return nil
}

func (j *ReindexJob) publish(ctx context.Context, p *domain.Product, matched string, old, price decimal.Decimal) {
	if j.publisher == nil {
		return
	}
	event := domain.PriceReindexedEvent{
		ProductID:  p.ID,
		SKU:        p.SKU,
		MatchedSKU: matched,
		Currency:   j.currency,
		OldPrice:   old.StringFixed(2),
		NewPrice:   price.StringFixed(2),
		OccurredOn: j.now(),
	}
	if err := j.publisher.PublishPriceReindexed(ctx, event); err != nil {
		j.logger.Warn("failed to publish price reindexed event", "product_id", p.ID, "error", err)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
