package catalog

import (
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/shopspring/decimal"
)

func ProductFromDocument(doc port.Document) domain.Product {
	d := doc.Data
	return domain.Product{
		ID:          doc.ID,
		Name:        stringField(d, "name"),
		Description: stringField(d, "description"),
		Category:    stringField(d, "category"),
		Price:       decimalField(d, "price"),
		OldPrice:    decimalField(d, "oldPrice"),
		Discount:    int(floatField(d, "discount")),
		Image:       stringField(d, "image"),
		Images:      stringsField(d, "images"),
		SKU:         stringField(d, "sku"),
		Stock:       int(floatField(d, "stock")),
		Status:      stringField(d, "status"),
		VendorID:    stringField(d, "vendorId"),
		VendorName:  stringField(d, "vendorName"),
		Rating:      floatField(d, "rating"),
		ReviewCount: int(floatField(d, "reviewCount")),
		CreatedAt:   timeField(d, "createdAt", doc.CreatedAt),
	}
}

func ProductToData(p domain.Product) map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price.InexactFloat64(),
		"oldPrice":    p.OldPrice.InexactFloat64(),
		"discount":    p.Discount,
		"image":       p.Image,
		"images":      p.Images,
		"sku":         p.SKU,
		"stock":       p.Stock,
		"status":      p.Status,
		"vendorId":    p.VendorID,
		"vendorName":  p.VendorName,
		"rating":      p.Rating,
		"reviewCount": p.ReviewCount,
		"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ReviewFromDocument(doc port.Document) domain.Review {
	d := doc.Data
	return domain.Review{
		ID:           doc.ID,
		ProductID:    stringField(d, "productId"),
		UserID:       stringField(d, "userId"),
		ReviewerName: stringField(d, "reviewerName"),
		Rating:       int(floatField(d, "rating")),
		Title:        stringField(d, "title"),
		Comment:      stringField(d, "comment"),
		CreatedAt:    timeField(d, "createdAt", doc.CreatedAt),
	}
}

func ReviewToData(r domain.Review) map[string]any {
	return map[string]any{
		"productId":    r.ProductID,
		"userId":       r.UserID,
		"reviewerName": r.ReviewerName,
		"rating":       r.Rating,
		"title":        r.Title,
		"comment":      r.Comment,
		"createdAt":    r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func stringField(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return s
}

func floatField(d map[string]any, key string) float64 {
	f, _ := d[key].(float64)
	return f
}

func decimalField(d map[string]any, key string) decimal.Decimal {
	switch v := d[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if dec, err := decimal.NewFromString(v); err == nil {
			return dec
		}
	}
	return decimal.Zero
}

func stringsField(d map[string]any, key string) []string {
	raw, _ := d[key].([]any)

	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func timeField(d map[string]any, key string, fallback time.Time) time.Time {
	s, _ := d[key].(string)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return fallback
}
