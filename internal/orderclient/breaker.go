package orderclient

import (
	"context"
	"errors"
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Zero disables it.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before a probe call.
	OpenTimeout time.Duration
}

type breakerService struct {
	next port.OrderService
	cb   *gobreaker.CircuitBreaker[domain.OrderConfirmation]
}

// WithBreaker fails calls fast while the order service keeps failing at the
// transport level. Rejections with a business code count as successes, and
// calls are never retried.
func WithBreaker(next port.OrderService, cfg BreakerConfig, logger zerolog.Logger) port.OrderService {
	if cfg.ConsecutiveFailures == 0 {
		return next
	}

	logger = logger.With().Str("component", "orderclient").Logger()

	settings := gobreaker.Settings{
		Name:    "create-order",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var orderErr *domain.OrderError
			return errors.As(err, &orderErr) && orderErr.Kind != domain.OrderErrorUnknown
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	}

	return &breakerService{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[domain.OrderConfirmation](settings),
	}
}

func (b *breakerService) CreateOrder(ctx context.Context, token string, lines []domain.OrderLine) (domain.OrderConfirmation, error) {
	confirmation, err := b.cb.Execute(func() (domain.OrderConfirmation, error) {
		return b.next.CreateOrder(ctx, token, lines)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.OrderConfirmation{}, &domain.OrderError{Kind: domain.OrderErrorUnknown, Err: err}
	}

	return confirmation, err
}
