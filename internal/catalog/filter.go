package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/shopspring/decimal"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
)

// PriceRange is inclusive. Max is ignored when Open is set.
type PriceRange struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Open bool
}

type Criteria struct {
	Search   string
	Category string
	Price    *PriceRange
	Sort     SortOrder
}

// ParsePriceRange reads "min-max" or "min-+". An empty string means no range.
func ParsePriceRange(s string) (*PriceRange, error) {
	if s == "" {
		return nil, nil
	}

	minStr, maxStr, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("price range[%s] is not valid", s)
	}

	minPrice, err := decimal.NewFromString(minStr)
	if err != nil {
		return nil, fmt.Errorf("price range[%s] min is not valid: %w", s, err)
	}

	if maxStr == "+" {
		return &PriceRange{Min: minPrice, Open: true}, nil
	}

	maxPrice, err := decimal.NewFromString(maxStr)
	if err != nil {
		return nil, fmt.Errorf("price range[%s] max is not valid: %w", s, err)
	}

	return &PriceRange{Min: minPrice, Max: maxPrice}, nil
}

func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceLow, SortPriceHigh, SortRating:
		return SortOrder(s)
	default:
		return SortNewest
	}
}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	return r.Open || price.LessThanOrEqual(r.Max)
}

// Filter returns the products matching c, sorted by c.Sort. The input is
// not modified.
func Filter(products []domain.Product, c Criteria) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if c.Category != "" && p.Category != c.Category {
			continue
		}
		if c.Price != nil && !c.Price.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}

	Sort(out, c.Sort)

	return out
}

func Sort(products []domain.Product, order SortOrder) {
	switch order {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.Price.Cmp(b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.Price.Cmp(a.Price)
		})
	case SortRating:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			switch {
			case a.Rating > b.Rating:
				return -1
			case a.Rating < b.Rating:
				return 1
			}
			return 0
		})
	default:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}
