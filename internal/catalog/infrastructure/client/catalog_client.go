// Package client talks to the remote pricing catalog.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/catalogpricing/pkg/config"
	"github.com/wyfcoding/catalogpricing/pkg/metrics"
	"github.com/wyfcoding/pkg/logging"
)

const (
	pricesPath     = "/service/price/pricesbychannel"
	defaultTimeout = 2 * time.Second
)

// priceItem is one element of the remote JSON array.
type priceItem struct {
	SKU         string          `json:"SKU"`
	Ask         decimal.Decimal `json:"Ask"`
	Bid         decimal.Decimal `json:"Bid"`
	RetailTiers []struct {
		Quantity int             `json:"Quantity"`
		Ask      decimal.Decimal `json:"Ask"`
	} `json:"RetailTiers"`
}

// CatalogClient fetches full price lists over HTTP. Every failure, including an
// open breaker, surfaces as domain.ErrRemoteFetch. Requests are never retried.
type CatalogClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	cfg     config.CatalogConfig
	timeout time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewCatalogClient builds a client for cfg; m may be nil.
func NewCatalogClient(cfg config.CatalogConfig, m *metrics.Metrics) *CatalogClient {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(cfg.CatalogBaseURL()).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeaders(map[string]string{
			"User-Agent":      "wpwc-" + cfg.UserAgentVersion,
			"Accept":          "application/json",
			"Accept-Encoding": "gzip",
		})

	failures := cfg.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	halfOpen := cfg.BreakerHalfOpenRequests
	if halfOpen <= 0 {
		halfOpen = 1
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog-" + cfg.TenantAlias,
		MaxRequests: uint32(halfOpen),
		Timeout:     time.Duration(cfg.BreakerOpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn(context.Background(), "catalog breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &CatalogClient{
		http:    httpClient,
		breaker: breaker,
		cfg:     cfg,
		timeout: timeout,
		metrics: m,
		now:     time.Now,
	}
}

// countsAsSuccess keeps caller cancellations out of the breaker's failure count.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// FetchCatalog performs one GET for currency and returns the parsed snapshot.
// The request is detached from ctx cancellation and bounded by the configured
// timeout, so a caller that goes away does not abort a refresh other readers
// are waiting on.
func (c *CatalogClient) FetchCatalog(ctx context.Context, currency string) (*domain.CatalogSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(fetchCtx, currency)
	})
	c.metrics.RecordCatalogFetch(currency, err, time.Since(start))

	if err != nil {
		logging.Warn(ctx, "catalog fetch failed",
			"currency", currency,
			"endpoint", c.cfg.CatalogBaseURL()+pricesPath,
			"error", err,
		)
		if errors.Is(err, domain.ErrRemoteFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}

	snapshot := result.(*domain.CatalogSnapshot)
	logging.Debug(ctx, "catalog fetched", "currency", currency, "records", snapshot.Len())
	return snapshot, nil
}

func (c *CatalogClient) fetch(ctx context.Context, currency string) (*domain.CatalogSnapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"currency":        currency,
			"channel":         c.cfg.SalesChannel,
			"withretailtiers": "true",
			"token":           c.cfg.APIToken,
		}).
		Get(pricesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: transport: %w", domain.ErrRemoteFetch, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: unexpected status %d", domain.ErrRemoteFetch, resp.StatusCode())
	}

	var items []priceItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrRemoteFetch, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty price list", domain.ErrRemoteFetch)
	}

	snapshot := domain.NewSnapshot(currency, toRecords(items), c.now())
	if snapshot.Len() == 0 {
		return nil, fmt.Errorf("%w: no usable records", domain.ErrRemoteFetch)
	}
	return snapshot, nil
}

func toRecords(items []priceItem) []*domain.CatalogRecord {
	records := make([]*domain.CatalogRecord, 0, len(items))
	for _, item := range items {
		r := &domain.CatalogRecord{
			SKU: item.SKU,
			Ask: item.Ask,
			Bid: item.Bid,
		}
		for _, t := range item.RetailTiers {
			if t.Quantity < 1 {
				continue
			}
			r.RetailTiers = append(r.RetailTiers, domain.RetailTier{Quantity: t.Quantity, Ask: t.Ask})
		}
		records = append(records, r)
	}
	return records
}
