package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/oja-market/internal/app"
	"github.com/nikolayk812/oja-market/internal/cartstore"
	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/checkout"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/presenter"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Delta int `json:"delta"`
}

type checkoutRequest struct {
	TermsAccepted bool `json:"termsAccepted"`
}

type checkoutResponse struct {
	Outcome string            `json:"outcome"`
	Message string            `json:"message,omitempty"`
	OrderID string            `json:"orderId,omitempty"`
	Total   string            `json:"total,omitempty"`
	Code    string            `json:"code,omitempty"`
	Effects presenter.Effects `json:"effects"`
}

func (h *handler) getCart(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.app.CartView())
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is empty")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be positive")
		return
	}

	err := h.app.AddProduct(r.Context(), req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	case errors.Is(err, app.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
		return
	case errors.Is(err, cartstore.ErrQuantityLimit):
		respondError(w, http.StatusUnprocessableEntity, "quantity_limit", err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Str("productId", req.ProductID).Msg("add to cart failed")
		respondError(w, http.StatusInternalServerError, "internal", "error adding to cart")
		return
	}

	respondJSON(w, http.StatusCreated, h.app.CartView())
}

func (h *handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.app.UpdateQuantity(r.Context(), index, req.Delta)

	respondJSON(w, http.StatusOK, h.app.CartView())
}

func (h *handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	h.app.Remove(r.Context(), index)

	respondJSON(w, http.StatusOK, h.app.CartView())
}

func (h *handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	outcome, effects := h.app.Checkout(r.Context(), checkout.Request{TermsAccepted: req.TermsAccepted})

	resp := checkoutResponse{
		Outcome: outcome.Kind.String(),
		Message: outcome.Message,
		Effects: effects,
	}
	if outcome.Kind == checkout.OutcomeSucceeded {
		resp.OrderID = outcome.Confirmation.OrderID
		resp.Total = h.app.Formatter().Format(outcome.Confirmation.Total)
	}
	if outcome.Err != nil {
		resp.Code = outcome.Err.Kind.String()
	}

	respondJSON(w, checkoutStatus(outcome), resp)
}

func checkoutStatus(outcome checkout.Outcome) int {
	switch outcome.Kind {
	case checkout.OutcomeSucceeded:
		return http.StatusCreated
	case checkout.OutcomeSkipped:
		return http.StatusConflict
	case checkout.OutcomeSignInRequired:
		return http.StatusUnauthorized
	case checkout.OutcomeEmptyCart, checkout.OutcomeTermsNotAccepted:
		return http.StatusUnprocessableEntity
	}

	switch outcome.Err.Kind {
	case domain.OrderErrorUnauthenticated:
		return http.StatusUnauthorized
	case domain.OrderErrorNotFound:
		return http.StatusNotFound
	case domain.OrderErrorFailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return 0, false
	}
	return index, true
}
