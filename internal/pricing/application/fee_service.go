package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
)

// CartLine one cart line as seen by the checkout fee hook.
type CartLine struct {
	SKU          string
	Quantity     int
	LineSubtotal decimal.Decimal
}

// FeeCommand the cart and the chosen payment method.
type FeeCommand struct {
	PaymentMethod string
	Lines         []CartLine
}

// FeeService computes the card processing fee added at checkout.
type FeeService struct {
	resolver CatalogResolver
	settings Settings
}

func NewFeeService(resolver CatalogResolver, settings Settings) *FeeService {
	return &FeeService{resolver: resolver, settings: settings}
}

// CheckoutFee charges the card surcharge on the subtotal of lines priced by the catalog.
func (s *FeeService) CheckoutFee(ctx context.Context, cmd FeeCommand) (*FeeDTO, error) {
	out := &FeeDTO{
		Label:           s.settings.Labels.FeeLabel,
		Amount:          decimal.Zero.StringFixed(2),
		MatchedSubtotal: decimal.Zero.StringFixed(2),
	}
	if s.settings.Surcharge == nil || len(cmd.Lines) == 0 || s.settings.Exempt.IsFeeExempt(cmd.PaymentMethod) {
		return out, nil
	}

	skus := make([]string, 0, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if l.SKU != "" {
			skus = append(skus, l.SKU)
		}
	}
	matches, err := s.resolver.ResolveEach(ctx, s.settings.Currency, skus)
	if err != nil {
		if !errors.Is(err, catalog.ErrRecordNotFound) {
			return nil, err
		}
		logging.Warn(ctx, "catalog unavailable, no checkout fee", "payment_method", cmd.PaymentMethod)
		matches = nil
	}

	subtotal := decimal.Zero
	for _, l := range cmd.Lines {
		if _, ok := matches[l.SKU]; ok {
			subtotal = subtotal.Add(l.LineSubtotal)
		}
	}

	out.Applied = true
	out.Amount = s.settings.Surcharge.Fee(subtotal).StringFixed(2)
	out.MatchedSubtotal = subtotal.StringFixed(2)
	return out, nil
}
