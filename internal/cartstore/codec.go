package cartstore

import (
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/shopspring/decimal"
)

// storedItem is the persisted layout: a JSON array of these, written
// wholesale under one key.
type storedItem struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Price      json.Number `json:"price"`
	Image      string      `json:"image,omitempty"`
	VendorID   string      `json:"vendorId,omitempty"`
	VendorName string      `json:"vendorName,omitempty"`
	Quantity   int         `json:"quantity"`
}

func encodeCart(cart domain.Cart) (string, error) {
	items := make([]storedItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, mapDomainToStored(item))
	}

	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	return string(data), nil
}

func decodeCart(raw string) (domain.Cart, error) {
	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	var cart domain.Cart
	for i, s := range stored {
		item, err := mapStoredToDomain(s)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("item[%d]: %w", i, err)
		}

		// carts written by the old append-on-add path can repeat a product
		if j := cart.IndexOf(item.ProductID); j >= 0 {
			cart.Items[j].Quantity += item.Quantity
			continue
		}

		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

func mapDomainToStored(item domain.CartLineItem) storedItem {
	return storedItem{
		ID:         item.ProductID,
		Name:       item.Name,
		Price:      json.Number(item.UnitPrice.String()),
		Image:      item.Image,
		VendorID:   item.VendorID,
		VendorName: item.VendorName,
		Quantity:   item.Quantity,
	}
}

func mapStoredToDomain(s storedItem) (domain.CartLineItem, error) {
	if s.ID == "" {
		return domain.CartLineItem{}, fmt.Errorf("id is empty")
	}
	if s.Quantity < 1 {
		return domain.CartLineItem{}, fmt.Errorf("quantity[%d] must be positive", s.Quantity)
	}

	price, err := decimal.NewFromString(s.Price.String())
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("price[%s] is not valid: %w", s.Price, err)
	}
	if price.IsNegative() {
		return domain.CartLineItem{}, fmt.Errorf("price[%s] must not be negative", s.Price)
	}

	return domain.CartLineItem{
		ProductID:  s.ID,
		Name:       s.Name,
		Image:      s.Image,
		UnitPrice:  price,
		Quantity:   s.Quantity,
		VendorID:   s.VendorID,
		VendorName: s.VendorName,
	}, nil
}
