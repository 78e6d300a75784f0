package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const ProductStatusActive = "active"

type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	OldPrice    decimal.Decimal
	Discount    int
	Image       string
	Images      []string
	SKU         string
	Stock       int
	Status      string
	VendorID    string
	VendorName  string
	Rating      float64
	ReviewCount int
	CreatedAt   time.Time
}

func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Name:       p.Name,
		Image:      p.Image,
		UnitPrice:  p.Price,
		VendorID:   p.VendorID,
		VendorName: p.VendorName,
	}
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

type Review struct {
	ID           string
	ProductID    string
	UserID       string
	ReviewerName string
	Rating       int
	Title        string
	Comment      string
	CreatedAt    time.Time
}
