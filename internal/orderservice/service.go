// Package orderservice is the authoritative createOrder implementation: it
// prices submitted lines from the catalog, reserves stock and records the
// order in one document store transaction.
package orderservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/orderapi"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const OrderStatusPending = "pending"

type Service struct {
	docs     port.TxDocumentStore
	verifier port.TokenVerifier
	totals   domain.TotalsConfig
	logger   zerolog.Logger
	now      func() time.Time
}

func New(docs port.TxDocumentStore, verifier port.TokenVerifier, totals domain.TotalsConfig, logger zerolog.Logger) *Service {
	return &Service{
		docs:     docs,
		verifier: verifier,
		totals:   totals,
		logger:   logger.With().Str("component", "orderservice").Logger(),
		now:      time.Now,
	}
}

// CreateOrder is the grpc handler.
func (s *Service) CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, ok := orderapi.TokenFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "sign in to place an order")
	}

	lines, err := orderapi.DecodeRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	confirmation, err := s.PlaceOrder(ctx, token, lines)
	if err != nil {
		return nil, err
	}

	resp, err := orderapi.EncodeResponse(confirmation)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}

	return resp, nil
}

// PlaceOrder fails with grpc status errors: Unauthenticated, InvalidArgument,
// NotFound, FailedPrecondition or Internal.
func (s *Service) PlaceOrder(ctx context.Context, token string, lines []domain.OrderLine) (domain.OrderConfirmation, error) {
	session, err := s.verifier.VerifyToken(ctx, token)
	if err != nil {
		return domain.OrderConfirmation{}, status.Error(codes.Unauthenticated, "sign in to place an order")
	}

	lines = mergeLines(lines)
	if len(lines) == 0 {
		return domain.OrderConfirmation{}, status.Error(codes.InvalidArgument, "cart is empty")
	}

	var confirmation domain.OrderConfirmation

	err = s.docs.RunInTx(ctx, func(tx port.DocumentStore) error {
		var cart domain.Cart
		for _, line := range lines {
			product, err := s.activeProduct(ctx, tx, line.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < line.Quantity {
				return status.Errorf(codes.FailedPrecondition, "insufficient stock for %s", product.Name)
			}

			// client prices are ignored
			item := domain.CartLineItem{
				ProductID:  product.ID,
				Name:       product.Name,
				Image:      product.Image,
				UnitPrice:  product.Price,
				Quantity:   line.Quantity,
				VendorID:   product.VendorID,
				VendorName: product.VendorName,
			}
			cart.Items = append(cart.Items, item.WithVendorDefaults())

			err = tx.Update(ctx, port.CollectionProducts, product.ID, map[string]any{
				"stock": product.Stock - line.Quantity,
			})
			if err != nil {
				return fmt.Errorf("tx.Update: %w", err)
			}
		}

		totals := domain.ComputeTotals(cart, s.totals)

		orderID, err := tx.Add(ctx, port.CollectionOrders, orderData(session, cart, totals, s.now()))
		if err != nil {
			return fmt.Errorf("tx.Add: %w", err)
		}

		confirmation = domain.OrderConfirmation{OrderID: orderID, Total: totals.Total}
		return nil
	})
	if err != nil {
		var se interface{ GRPCStatus() *status.Status }
		if errors.As(err, &se) {
			return domain.OrderConfirmation{}, se.GRPCStatus().Err()
		}

		s.logger.Error().Err(err).Str("userId", session.UserID).Msg("create order failed")
		return domain.OrderConfirmation{}, status.Error(codes.Internal, "failed to create order")
	}

	s.logger.Info().
		Str("orderId", confirmation.OrderID).
		Str("userId", session.UserID).
		Str("total", confirmation.Total.String()).
		Msg("order created")

	return confirmation, nil
}

func (s *Service) activeProduct(ctx context.Context, docs port.DocumentStore, id string) (domain.Product, error) {
	doc, err := docs.Get(ctx, port.CollectionProducts, id)
	if errors.Is(err, port.ErrNotFound) {
		return domain.Product{}, status.Errorf(codes.NotFound, "product %s not found", id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("docs.Get: %w", err)
	}

	product := catalog.ProductFromDocument(doc)
	if product.Status != domain.ProductStatusActive {
		return domain.Product{}, status.Errorf(codes.NotFound, "product %s not found", id)
	}

	return product, nil
}

// mergeLines sums quantities of repeated products, keeping first-seen order.
func mergeLines(lines []domain.OrderLine) []domain.OrderLine {
	merged := make([]domain.OrderLine, 0, len(lines))
	index := make(map[string]int, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged
}

func orderData(session domain.Session, cart domain.Cart, totals domain.OrderTotals, now time.Time) map[string]any {
	items := make([]any, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, map[string]any{
			"productId":  item.ProductID,
			"name":       item.Name,
			"image":      item.Image,
			"price":      item.UnitPrice.InexactFloat64(),
			"quantity":   item.Quantity,
			"vendorId":   item.VendorID,
			"vendorName": item.VendorName,
		})
	}

	return map[string]any{
		"userId":    session.UserID,
		"userEmail": session.Email,
		"items":     items,
		"subtotal":  totals.Subtotal.InexactFloat64(),
		"shipping":  totals.Shipping.InexactFloat64(),
		"tax":       totals.Tax.InexactFloat64(),
		"total":     totals.Total.InexactFloat64(),
		"status":    OrderStatusPending,
		"createdAt": now.UTC().Format(time.RFC3339Nano),
	}
}
