// Package presenter turns cart state into display-ready view models and
// records the UI effects of a checkout attempt.
package presenter

import (
	"fmt"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FreeShippingLabel = "FREE"
	PlaceholderImage  = "public/placeholder.jpg"
)

type Formatter interface {
	Format(amount decimal.Decimal) string
}

type ItemView struct {
	// Index is the item's position in the cart, used by quantity and
	// remove actions.
	Index      int    `json:"index"`
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	VendorName string `json:"vendorName"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	LineTotal  string `json:"lineTotal"`
}

type GroupView struct {
	VendorID   string     `json:"vendorId"`
	VendorName string     `json:"vendorName"`
	CountLabel string     `json:"countLabel"`
	Items      []ItemView `json:"items"`
}

type CartView struct {
	Items          []ItemView  `json:"items"`
	Groups         []GroupView `json:"groups"`
	Subtotal       string      `json:"subtotal"`
	Shipping       string      `json:"shipping"`
	Tax            string      `json:"tax"`
	Total          string      `json:"total"`
	FreeShipping   bool        `json:"freeShipping"`
	ItemCount      int         `json:"itemCount"`
	ItemCountLabel string      `json:"itemCountLabel"`
	Empty          bool        `json:"empty"`
}

func BuildCart(cart domain.Cart, cfg domain.TotalsConfig, f Formatter) CartView {
	view := CartView{
		Items:     make([]ItemView, 0, len(cart.Items)),
		Groups:    []GroupView{},
		ItemCount: cart.ItemCount(),
		Empty:     cart.IsEmpty(),
	}
	view.ItemCountLabel = CountLabel(view.ItemCount)

	indexes := make(map[string]int, len(cart.Items))
	for i, item := range cart.Items {
		indexes[item.ProductID] = i
		view.Items = append(view.Items, itemView(i, item, f))
	}

	for _, group := range domain.GroupByVendor(cart) {
		gv := GroupView{
			VendorID:   group.VendorID,
			VendorName: group.VendorName,
			CountLabel: CountLabel(len(group.Items)),
			Items:      make([]ItemView, 0, len(group.Items)),
		}
		for _, item := range group.Items {
			gv.Items = append(gv.Items, itemView(indexes[item.ProductID], item, f))
		}
		view.Groups = append(view.Groups, gv)
	}

	totals := domain.ComputeTotals(cart, cfg)
	view.Subtotal = f.Format(totals.Subtotal)
	view.Tax = f.Format(totals.Tax)
	view.Total = f.Format(totals.Total)
	view.FreeShipping = totals.FreeShipping()
	view.Shipping = f.Format(totals.Shipping)
	if view.FreeShipping {
		view.Shipping = FreeShippingLabel
	}

	return view
}

// CountLabel renders "1 item" or "N items".
func CountLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func itemView(index int, item domain.CartLineItem, f Formatter) ItemView {
	item = item.WithVendorDefaults()

	image := item.Image
	if image == "" {
		image = PlaceholderImage
	}

	return ItemView{
		Index:      index,
		ProductID:  item.ProductID,
		Name:       item.Name,
		Image:      image,
		VendorName: item.VendorName,
		Quantity:   item.Quantity,
		UnitPrice:  f.Format(item.UnitPrice),
		LineTotal:  f.Format(item.LineTotal()),
	}
}
