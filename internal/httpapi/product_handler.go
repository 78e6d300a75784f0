package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/domain"
)

type productResponse struct {
	ID          string                          `json:"id"`
	Name        string                          `json:"name"`
	Description string                          `json:"description,omitempty"`
	Category    string                          `json:"category,omitempty"`
	Price       string                          `json:"price"`
	PriceLabel  string                          `json:"priceLabel"`
	Image       string                          `json:"image,omitempty"`
	Images      []string                        `json:"images,omitempty"`
	Stock       int                             `json:"stock"`
	InStock     bool                            `json:"inStock"`
	VendorID    string                          `json:"vendorId,omitempty"`
	VendorName  string                          `json:"vendorName,omitempty"`
	Rating      float64                         `json:"rating"`
	ReviewCount int                             `json:"reviewCount"`
	Stars       [catalog.MaxRating]catalog.Star `json:"stars"`
}

type reviewsResponse struct {
	Reviews []reviewResponse      `json:"reviews"`
	Summary catalog.RatingSummary `json:"summary"`
}

type reviewResponse struct {
	ID           string `json:"id"`
	ReviewerName string `json:"reviewerName"`
	Rating       int    `json:"rating"`
	Title        string `json:"title,omitempty"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

type submitReviewRequest struct {
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Comment      string `json:"comment"`
	ReviewerName string `json:"reviewerName"`
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	priceRange, err := catalog.ParsePriceRange(q.Get("price"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	products, err := h.app.Catalog().ActiveProducts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load products failed")
		respondError(w, http.StatusInternalServerError, "internal", "error loading products")
		return
	}

	products = catalog.Filter(products, catalog.Criteria{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Price:    priceRange,
		Sort:     catalog.ParseSortOrder(q.Get("sort")),
	})

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, h.productResponse(p))
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.app.Catalog().Product(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("load product failed")
		respondError(w, http.StatusInternalServerError, "internal", "error loading product")
		return
	}

	respondJSON(w, http.StatusOK, h.productResponse(product))
}

func (h *handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.app.Catalog().Reviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error().Err(err).Msg("load reviews failed")
		respondError(w, http.StatusInternalServerError, "internal", "error loading reviews")
		return
	}

	resp := reviewsResponse{
		Reviews: make([]reviewResponse, 0, len(reviews)),
		Summary: catalog.Summarize(reviews),
	}
	for _, review := range reviews {
		resp.Reviews = append(resp.Reviews, reviewResponse{
			ID:           review.ID,
			ReviewerName: review.ReviewerName,
			Rating:       review.Rating,
			Title:        review.Title,
			Comment:      review.Comment,
			CreatedAt:    review.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	review, err := h.app.Catalog().SubmitReview(r.Context(), h.app.CurrentSession(), domain.Review{
		ProductID:    chi.URLParam(r, "id"),
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Title:        req.Title,
		Comment:      req.Comment,
	})
	switch {
	case errors.Is(err, catalog.ErrSignInRequired):
		respondError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
		return
	case errors.Is(err, catalog.ErrInvalidRating):
		respondError(w, http.StatusBadRequest, "invalid_rating", err.Error())
		return
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("submit review failed")
		respondError(w, http.StatusInternalServerError, "internal", "error submitting review")
		return
	}

	respondJSON(w, http.StatusCreated, reviewResponse{
		ID:           review.ID,
		ReviewerName: review.ReviewerName,
		Rating:       review.Rating,
		Title:        review.Title,
		Comment:      review.Comment,
		CreatedAt:    review.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *handler) productResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.String(),
		PriceLabel:  h.app.Formatter().Format(p.Price),
		Image:       p.Image,
		Images:      p.Images,
		Stock:       p.Stock,
		InStock:     p.InStock(),
		VendorID:    p.VendorID,
		VendorName:  p.VendorName,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Stars:       catalog.Stars(p.Rating),
	}
}
