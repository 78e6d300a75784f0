package domain

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultVendorID   = "default"
	DefaultVendorName = "Oja Marketplace"
)

// Cart is the buyer's in-progress list of line items in insertion order.
type Cart struct {
	Items []CartLineItem
}

// CartLineItem is one product entry in a cart. Name, Image and the vendor
// fields are a snapshot taken when the product was added.
type CartLineItem struct {
	ProductID  string
	Name       string
	Image      string
	UnitPrice  decimal.Decimal
	Quantity   int
	VendorID   string
	VendorName string
}

// ProductSnapshot is the display data copied into a new line item.
type ProductSnapshot struct {
	Name       string
	Image      string
	UnitPrice  decimal.Decimal
	VendorID   string
	VendorName string
}

func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// WithVendorDefaults fills a missing vendor with the marketplace sentinel.
func (i CartLineItem) WithVendorDefaults() CartLineItem {
	if i.VendorID == "" {
		i.VendorID = DefaultVendorID
	}
	if i.VendorName == "" {
		i.VendorName = DefaultVendorName
	}
	return i
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the sum of quantities, shown on the cart badge.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}

	items := make([]CartLineItem, len(c.Items))
	copy(items, c.Items)

	return Cart{Items: items}
}

// IndexOf returns the position of productID in the cart or -1.
func (c Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
