package port

import (
	"context"
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
)

// OrderService is the remote createOrder callable. Failures are reported
// as *domain.OrderError.
type OrderService interface {
	CreateOrder(ctx context.Context, token string, lines []domain.OrderLine) (domain.OrderConfirmation, error)
}

type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertSuccess AlertLevel = "success"
	AlertError   AlertLevel = "error"
)

// CheckoutView is the UI side of a checkout attempt.
type CheckoutView interface {
	SetCheckoutEnabled(enabled bool)
	Alert(level AlertLevel, message string)
	Navigate(target string, after time.Duration)
}
