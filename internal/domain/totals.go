package domain

import (
	"github.com/shopspring/decimal"
)

// TotalsConfig holds the pricing knobs applied on top of the cart subtotal.
type TotalsConfig struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultTotalsConfig() TotalsConfig {
	return TotalsConfig{
		FreeShippingThreshold: decimal.NewFromInt(50000),
		FlatShippingFee:       decimal.NewFromInt(5000),
		TaxRate:               decimal.RequireFromString("0.075"),
	}
}

type OrderTotals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func (t OrderTotals) FreeShipping() bool {
	return t.Shipping.IsZero()
}

type VendorGroup struct {
	VendorID   string
	VendorName string
	Items      []CartLineItem
}

// ComputeTotals derives subtotal, shipping, tax and total for cart.
// Nothing is rounded here; rounding happens when amounts are formatted.
func ComputeTotals(cart Cart, cfg TotalsConfig) OrderTotals {
	subtotal := decimal.Zero
	for _, item := range cart.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	shipping := cfg.FlatShippingFee
	if subtotal.GreaterThan(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(cfg.TaxRate)

	return OrderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// GroupByVendor buckets items by vendor, first-seen vendor first.
// Items without a vendor land in the marketplace group.
func GroupByVendor(cart Cart) []VendorGroup {
	var groups []VendorGroup
	index := make(map[string]int)

	for _, item := range cart.Items {
		item = item.WithVendorDefaults()

		i, ok := index[item.VendorID]
		if !ok {
			i = len(groups)
			index[item.VendorID] = i
			groups = append(groups, VendorGroup{
				VendorID:   item.VendorID,
				VendorName: item.VendorName,
			})
		}

		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}
