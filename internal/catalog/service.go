// Package catalog reads products and reviews from the document store and
// implements the storefront's listing filters and rating aggregation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrSignInRequired  = errors.New("sign in to write a review")
)

type Service struct {
	docs   port.DocumentStore
	logger zerolog.Logger
	sfg    singleflight.Group // collapses concurrent listing loads
	now    func() time.Time
}

func NewService(docs port.DocumentStore, logger zerolog.Logger) *Service {
	return &Service{
		docs:   docs,
		logger: logger.With().Str("component", "catalog").Logger(),
		now:    time.Now,
	}
}

func (s *Service) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("active-products", func() (any, error) {
		docs, err := s.docs.Query(ctx, port.CollectionProducts,
			port.Where("status", port.OpEq, domain.ProductStatusActive))
		if err != nil {
			return nil, fmt.Errorf("docs.Query: %w", err)
		}

		products := make([]domain.Product, 0, len(docs))
		for _, doc := range docs {
			products = append(products, ProductFromDocument(doc))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sort in place, so each gets its own slice
	return slices.Clone(v.([]domain.Product)), nil
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("productID is empty")
	}

	doc, err := s.docs.Get(ctx, port.CollectionProducts, id)
	if errors.Is(err, port.ErrNotFound) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("docs.Get: %w", err)
	}

	return ProductFromDocument(doc), nil
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	if strings.TrimSpace(p.Name) == "" {
		return "", fmt.Errorf("name is empty")
	}
	if p.Price.IsNegative() {
		return "", fmt.Errorf("price[%s] must not be negative", p.Price)
	}
	if p.Status == "" {
		p.Status = domain.ProductStatusActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	id, err := s.docs.Add(ctx, port.CollectionProducts, ProductToData(p))
	if err != nil {
		return "", fmt.Errorf("docs.Add: %w", err)
	}

	return id, nil
}

// Reviews returns the product's reviews, newest first.
func (s *Service) Reviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, fmt.Errorf("productID is empty")
	}

	docs, err := s.docs.Query(ctx, port.CollectionReviews,
		port.Where("productId", port.OpEq, productID))
	if err != nil {
		return nil, fmt.Errorf("docs.Query: %w", err)
	}

	reviews := make([]domain.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, ReviewFromDocument(doc))
	}

	slices.SortStableFunc(reviews, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return reviews, nil
}

// SubmitReview stores a review by the signed-in user and refreshes the
// product's rating and review count.
func (s *Service) SubmitReview(ctx context.Context, session *domain.Session, r domain.Review) (domain.Review, error) {
	if session == nil {
		return domain.Review{}, ErrSignInRequired
	}
	if !ValidRating(r.Rating) {
		return domain.Review{}, ErrInvalidRating
	}

	if _, err := s.Product(ctx, r.ProductID); err != nil {
		return domain.Review{}, err
	}

	r.UserID = session.UserID
	if r.ReviewerName == "" {
		r.ReviewerName = session.Email
	}
	r.CreatedAt = s.now().UTC()

	id, err := s.docs.Add(ctx, port.CollectionReviews, ReviewToData(r))
	if err != nil {
		return domain.Review{}, fmt.Errorf("docs.Add: %w", err)
	}
	r.ID = id

	reviews, err := s.Reviews(ctx, r.ProductID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("s.Reviews: %w", err)
	}

	summary := Summarize(reviews)
	err = s.docs.Update(ctx, port.CollectionProducts, r.ProductID, map[string]any{
		"rating":      summary.Average,
		"reviewCount": summary.Count,
	})
	if err != nil {
		// the review itself is stored; the listing aggregate catches up on the next review
		s.logger.Warn().Err(err).Str("productId", r.ProductID).Msg("update product rating failed")
	}

	return r, nil
}
