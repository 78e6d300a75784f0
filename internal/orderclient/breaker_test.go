package orderclient_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/orderclient"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrderService struct {
	calls atomic.Int32
	err   error
}

func (s *stubOrderService) CreateOrder(context.Context, string, []domain.OrderLine) (domain.OrderConfirmation, error) {
	s.calls.Add(1)
	if s.err != nil {
		return domain.OrderConfirmation{}, s.err
	}
	return domain.OrderConfirmation{OrderID: "o-1"}, nil
}

func TestWithBreaker_OpensOnTransportFailures(t *testing.T) {
	stub := &stubOrderService{err: &domain.OrderError{Kind: domain.OrderErrorUnknown, Err: errors.New("unavailable")}}
	svc := orderclient.WithBreaker(stub, orderclient.BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, zerolog.Nop())

	for range 2 {
		_, err := svc.CreateOrder(t.Context(), "t", nil)
		require.Error(t, err)
	}

	_, err := svc.CreateOrder(t.Context(), "t", nil)

	var orderErr *domain.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, domain.OrderErrorUnknown, orderErr.Kind)
	assert.Empty(t, orderErr.Message)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), stub.calls.Load(), "open breaker does not call through")
}

func TestWithBreaker_BusinessErrorsDoNotTrip(t *testing.T) {
	stub := &stubOrderService{err: &domain.OrderError{Kind: domain.OrderErrorFailedPrecondition, Message: "insufficient stock"}}
	svc := orderclient.WithBreaker(stub, orderclient.BreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Minute}, zerolog.Nop())

	for range 3 {
		_, err := svc.CreateOrder(t.Context(), "t", nil)

		var orderErr *domain.OrderError
		require.ErrorAs(t, err, &orderErr)
		assert.Equal(t, domain.OrderErrorFailedPrecondition, orderErr.Kind)
	}

	assert.Equal(t, int32(3), stub.calls.Load())
}

func TestWithBreaker_Disabled(t *testing.T) {
	stub := &stubOrderService{}

	svc := orderclient.WithBreaker(stub, orderclient.BreakerConfig{}, zerolog.Nop())

	assert.Same(t, stub, svc)
}
