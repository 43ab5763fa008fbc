// Package pricing derives shipping, tax and totals from line items.
// All amounts are integer minor units (cents).
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const (
	// FreeShippingThresholdCents is an exclusive lower bound: totals strictly above it ship free.
	FreeShippingThresholdCents int64 = 10000
	// FlatShippingFeeCents applies at or below the threshold.
	FlatShippingFeeCents int64 = 1000
	// TaxBasisPoints is the flat tax rate (1500 = 15%).
	TaxBasisPoints int64 = 1500
	// MaxAmountCents caps any single price and any items total (1,000,000,000.00).
	MaxAmountCents int64 = 100_000_000_000
	// MaxTotalCents is the largest order total a capped items total can produce.
	MaxTotalCents = MaxAmountCents + MaxAmountCents*TaxBasisPoints/10000 + FlatShippingFeeCents
)

// ErrAmountOutOfRange is returned for amounts above the caps.
var ErrAmountOutOfRange = errors.New("amount out of range")

// Totals is the derived portion of an order price.
type Totals struct {
	ShippingCents int64
	TaxCents      int64
}

// ItemsTotal sums unit price times quantity over the items.
// It fails with ErrAmountOutOfRange instead of exceeding MaxAmountCents.
func ItemsTotal(items []domain.LineItem) (int64, error) {
	var total int64
	for _, item := range items {
		unit, qty := item.UnitPriceCents, int64(item.Quantity)
		if unit < 0 || qty < 0 {
			return 0, fmt.Errorf("%w: negative line for %s", ErrAmountOutOfRange, item.ProductRef)
		}
		if qty > 0 && unit > (MaxAmountCents-total)/qty {
			return 0, fmt.Errorf("%w: items total above %s", ErrAmountOutOfRange, FormatCents(MaxAmountCents))
		}
		total += unit * qty
	}
	return total, nil
}

// Shipping returns the shipping cost for an items total.
func Shipping(itemsTotalCents int64) int64 {
	if itemsTotalCents > FreeShippingThresholdCents {
		return 0
	}
	return FlatShippingFeeCents
}

// Tax returns the flat-rate tax rounded half-up to the cent.
func Tax(itemsTotalCents int64) int64 {
	return decimal.NewFromInt(itemsTotalCents).
		Mul(decimal.NewFromInt(TaxBasisPoints)).
		Shift(-4).
		Round(0).
		IntPart()
}

// ComputeTotals derives shipping and tax for the items total.
func ComputeTotals(itemsTotalCents int64) Totals {
	return Totals{
		ShippingCents: Shipping(itemsTotalCents),
		TaxCents:      Tax(itemsTotalCents),
	}
}

// Recalculate refreshes the derived totals of a cart in place. The cart is left untouched on error.
func Recalculate(cart *domain.Cart) error {
	itemsTotal, err := ItemsTotal(cart.Items)
	if err != nil {
		return err
	}
	cart.ItemsTotalCents = itemsTotal
	cart.ShippingCostCents = Shipping(itemsTotal)
	cart.GrandTotalCents = itemsTotal + cart.ShippingCostCents
	return nil
}

var (
	errNegativeAmount = errors.New("amount must not be negative")
	errSubCentAmount  = errors.New("amount has more than two decimal places")
)

// ParseAmount converts a major-unit decimal such as 138.00 to cents. Amounts above MaxTotalCents are rejected.
func ParseAmount(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, errNegativeAmount
	}
	cents := amount.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, errSubCentAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(MaxTotalCents)) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount.String())
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a two-decimal major-unit string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
