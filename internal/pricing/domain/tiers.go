// Package domain holds the storefront pricing rules: tiered unit prices, the
// lowest advertised price, variation ranges, tier tables and the card surcharge.
package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
)

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ResolveUnitPrice returns the per-unit price for buying qty units: the rounded
// base ask, replaced by the rounded ask of the largest tier whose quantity is
// at most qty. qty below 1 is treated as 1.
func ResolveUnitPrice(record *catalog.CatalogRecord, qty int) decimal.Decimal {
	if qty < 1 {
		qty = 1
	}
	price := Round2(record.Ask)
	for _, tier := range record.SortedTiers() {
		if tier.Quantity > qty {
			break
		}
		price = Round2(tier.Ask)
	}
	return price
}

// LowestPossiblePrice is the rounded minimum of the base ask and every tier ask.
// Tier asks are not assumed to fall as quantity rises. ok is false for a nil record.
func LowestPossiblePrice(record *catalog.CatalogRecord) (price decimal.Decimal, ok bool) {
	if record == nil {
		return decimal.Zero, false
	}
	lowest := record.Ask
	for _, tier := range record.RetailTiers {
		if tier.Ask.LessThan(lowest) {
			lowest = tier.Ask
		}
	}
	return Round2(lowest), true
}

// PriceRange the span of asks across a variable product's variations.
type PriceRange struct {
	Low  decimal.Decimal `json:"low"`
	High decimal.Decimal `json:"high"`
}

// IsSingle reports whether every variation has the same ask.
func (r PriceRange) IsSingle() bool {
	return r.Low.Equal(r.High)
}

// NewPriceRange spans the asks of records. Nil records are skipped; ok is false
// when nothing remains.
func NewPriceRange(records []*catalog.CatalogRecord) (rng PriceRange, ok bool) {
	asks := make([]decimal.Decimal, 0, len(records))
	for _, r := range records {
		if r != nil {
			asks = append(asks, r.Ask)
		}
	}
	if len(asks) == 0 {
		return PriceRange{}, false
	}
	sort.Slice(asks, func(i, j int) bool { return asks[i].LessThan(asks[j]) })
	return PriceRange{Low: asks[0], High: asks[len(asks)-1]}, true
}

// DisplayRow one line of the volume pricing table.
type DisplayRow struct {
	MinQuantity int `json:"min_quantity"`
	// MaxQuantity is 0 for the open-ended last row.
	MaxQuantity   int              `json:"max_quantity,omitempty"`
	Ask           decimal.Decimal  `json:"ask"`
	SurchargedAsk *decimal.Decimal `json:"surcharged_ask,omitempty"`
}

// Label renders the quantity span as "1-4" or "10+".
func (r DisplayRow) Label() string {
	if r.MaxQuantity == 0 {
		return fmt.Sprintf("%d+", r.MinQuantity)
	}
	return fmt.Sprintf("%d-%d", r.MinQuantity, r.MaxQuantity)
}

// TieredDisplayTable lays out the record's tiers for display. When the first
// tier starts above 1 a leading row at the base ask covers the gap. With
// surcharge set, each row also carries the card price.
func TieredDisplayTable(record *catalog.CatalogRecord, surcharge *Surcharge) []DisplayRow {
	tiers := record.SortedTiers()
	if len(tiers) == 0 {
		return nil
	}

	rows := make([]DisplayRow, 0, len(tiers)+1)
	if tiers[0].Quantity > 1 {
		rows = append(rows, newDisplayRow(1, tiers[0].Quantity-1, record.Ask, surcharge))
	}
	for i, tier := range tiers {
		upper := 0
		if i+1 < len(tiers) {
			upper = tiers[i+1].Quantity - 1
		}
		rows = append(rows, newDisplayRow(tier.Quantity, upper, tier.Ask, surcharge))
	}
	return rows
}

func newDisplayRow(lower, upper int, ask decimal.Decimal, surcharge *Surcharge) DisplayRow {
	row := DisplayRow{MinQuantity: lower, MaxQuantity: upper, Ask: Round2(ask)}
	if surcharge != nil {
		card := surcharge.Apply(ask)
		row.SurchargedAsk = &card
	}
	return row
}
