// Package orderclient calls the remote createOrder operation over grpc and
// classifies its failures.
package orderclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/orderapi"
	"github.com/nikolayk812/oja-market/internal/port"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type client struct {
	conn grpc.ClientConnInterface
}

// New returns an order service that invokes the call once with no deadline
// of its own; ctx is the only way to bound it.
func New(conn grpc.ClientConnInterface) port.OrderService {
	return &client{conn: conn}
}

func (c *client) CreateOrder(ctx context.Context, token string, lines []domain.OrderLine) (domain.OrderConfirmation, error) {
	req, err := orderapi.EncodeRequest(lines)
	if err != nil {
		return domain.OrderConfirmation{}, &domain.OrderError{Kind: domain.OrderErrorUnknown, Err: err}
	}

	if token != "" {
		ctx = orderapi.WithToken(ctx, token)
	}

	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, orderapi.CreateOrderMethod, req, resp); err != nil {
		return domain.OrderConfirmation{}, Classify(err)
	}

	confirmation, err := orderapi.DecodeResponse(resp)
	if err != nil {
		return domain.OrderConfirmation{}, &domain.OrderError{
			Kind: domain.OrderErrorUnknown,
			Err:  fmt.Errorf("orderapi.DecodeResponse: %w", err),
		}
	}

	return confirmation, nil
}

// Classify maps a createOrder failure to an OrderError. Server messages are
// kept for the business codes; transport failures carry no message.
func Classify(err error) *domain.OrderError {
	if err == nil {
		return nil
	}

	var orderErr *domain.OrderError
	if errors.As(err, &orderErr) {
		return orderErr
	}

	st, ok := status.FromError(err)
	if !ok {
		return &domain.OrderError{Kind: domain.OrderErrorUnknown, Err: err}
	}

	classified := &domain.OrderError{Kind: domain.OrderErrorUnknown, Message: st.Message(), Err: err}

	switch st.Code() {
	case codes.Unauthenticated:
		classified.Kind = domain.OrderErrorUnauthenticated
	case codes.NotFound:
		classified.Kind = domain.OrderErrorNotFound
	case codes.FailedPrecondition:
		classified.Kind = domain.OrderErrorFailedPrecondition
	case codes.InvalidArgument, codes.Internal:
	default:
		classified.Message = ""
	}

	return classified
}
