package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderLine is what the client submits for one cart item. UnitPrice and
// Name are informational; the order service prices from its catalog.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Name      string
}

type OrderConfirmation struct {
	OrderID string
	Total   decimal.Decimal
}

type OrderErrorKind int

const (
	OrderErrorUnknown OrderErrorKind = iota
	OrderErrorUnauthenticated
	OrderErrorNotFound
	OrderErrorFailedPrecondition
)

func (k OrderErrorKind) String() string {
	switch k {
	case OrderErrorUnauthenticated:
		return "unauthenticated"
	case OrderErrorNotFound:
		return "not-found"
	case OrderErrorFailedPrecondition:
		return "failed-precondition"
	default:
		return "unknown"
	}
}

// OrderError is a classified failure reported by the order service.
type OrderError struct {
	Kind    OrderErrorKind
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("create order: %s", e.Kind)
	}
	return fmt.Sprintf("create order: %s: %s", e.Kind, e.Message)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// OrderLines copies the cart into the submission payload.
func OrderLines(cart Cart) []OrderLine {
	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Name:      item.Name,
		})
	}
	return lines
}
