package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Surcharge a card-payment markup expressed in percent.
type Surcharge struct {
	Percent decimal.Decimal
}

// ParseSurcharge reads a percentage setting such as "3" or "2.5".
// An empty or zero value yields nil: no surcharge applies.
func ParseSurcharge(raw string) (*Surcharge, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if raw == "" {
		return nil, nil
	}
	pct, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid surcharge percent %q: %w", raw, err)
	}
	if pct.IsNegative() {
		return nil, fmt.Errorf("invalid surcharge percent %q: negative", raw)
	}
	if pct.IsZero() {
		return nil, nil
	}
	return &Surcharge{Percent: pct}, nil
}

// Apply returns amount × (1 + pct/100), rounded to cents.
func (s *Surcharge) Apply(amount decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(decimal.NewFromInt(1).Add(s.Percent.Div(hundred))))
}

// Fee returns base × pct/100, rounded to cents.
func (s *Surcharge) Fee(base decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(s.Percent).Div(hundred))
}

// FeeExemption the payment methods that never carry the surcharge.
type FeeExemption map[string]struct{}

func NewFeeExemption(methods []string) FeeExemption {
	e := make(FeeExemption, len(methods))
	for _, m := range methods {
		e[m] = struct{}{}
	}
	return e
}

// IsFeeExempt reports whether method is exempt.
func (e FeeExemption) IsFeeExempt(method string) bool {
	_, ok := e[method]
	return ok
}
