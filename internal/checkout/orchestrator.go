// Package checkout submits the cart to the order service and reconciles the
// result with the cart and the view.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Config struct {
	LoginPath          string
	CartPath           string
	ConfirmationPath   string
	LoginRedirectDelay time.Duration
	ConfirmationDelay  time.Duration
	RequireTerms       bool
}

func DefaultConfig() Config {
	return Config{
		LoginPath:          "/login",
		CartPath:           "/cart",
		ConfirmationPath:   "/order-confirmation",
		LoginRedirectDelay: 1500 * time.Millisecond,
		ConfirmationDelay:  2 * time.Second,
		RequireTerms:       true,
	}
}

type Sessions interface {
	CurrentSession() *domain.Session
}

type Cart interface {
	Cart() domain.Cart
	Clear(ctx context.Context)
}

type Formatter interface {
	Format(amount decimal.Decimal) string
}

type Request struct {
	TermsAccepted bool
}

// Outcome is the final result of one Checkout call. Message is what was
// shown to the user.
type Outcome struct {
	Kind         OutcomeKind
	Message      string
	Confirmation domain.OrderConfirmation
	Err          *domain.OrderError
}

type Orchestrator struct {
	sessions  Sessions
	cart      Cart
	orders    port.OrderService
	view      port.CheckoutView
	formatter Formatter
	cfg       Config
	logger    zerolog.Logger

	state    atomic.Int32
	inFlight atomic.Bool
}

func New(
	sessions Sessions,
	cart Cart,
	orders port.OrderService,
	view port.CheckoutView,
	formatter Formatter,
	cfg Config,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		cart:      cart,
		orders:    orders,
		view:      view,
		formatter: formatter,
		cfg:       cfg,
		logger:    logger.With().Str("component", "checkout").Logger(),
	}
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Checkout runs one attempt. A call made while another is in flight returns
// OutcomeSkipped without side effects. Once submitted, the remote call runs
// to completion even if ctx is cancelled; it is not retried.
func (o *Orchestrator) Checkout(ctx context.Context, req Request) Outcome {
	if !o.inFlight.CompareAndSwap(false, true) {
		return Outcome{Kind: OutcomeSkipped}
	}
	defer func() {
		o.setState(StateIdle)
		o.inFlight.Store(false)
	}()

	o.setState(StateValidating)

	session := o.sessions.CurrentSession()
	if session == nil {
		o.view.Alert(port.AlertError, MsgSignInRequired)
		o.view.Navigate(o.loginTarget(), o.cfg.LoginRedirectDelay)
		return Outcome{Kind: OutcomeSignInRequired, Message: MsgSignInRequired}
	}

	cart := o.cart.Cart()
	if cart.IsEmpty() {
		o.view.Alert(port.AlertError, MsgEmptyCart)
		return Outcome{Kind: OutcomeEmptyCart, Message: MsgEmptyCart}
	}

	if o.cfg.RequireTerms && !req.TermsAccepted {
		o.view.Alert(port.AlertError, MsgTermsRequired)
		return Outcome{Kind: OutcomeTermsNotAccepted, Message: MsgTermsRequired}
	}

	o.setState(StateSubmitting)
	o.view.SetCheckoutEnabled(false)
	defer o.view.SetCheckoutEnabled(true)

	// the order may already be committed remotely when ctx is cancelled
	submitCtx := context.WithoutCancel(ctx)

	confirmation, err := o.orders.CreateOrder(submitCtx, session.Token, domain.OrderLines(cart))
	if err != nil {
		o.setState(StateFailed)
		return o.fail(err)
	}

	o.setState(StateSuccess)
	o.cart.Clear(submitCtx)

	message := fmt.Sprintf("Order placed successfully! Total: %s", o.formatter.Format(confirmation.Total))
	o.view.Alert(port.AlertSuccess, message)
	o.view.Navigate(o.confirmationTarget(confirmation.OrderID), o.cfg.ConfirmationDelay)

	o.logger.Info().
		Str("orderId", confirmation.OrderID).
		Str("userId", session.UserID).
		Int("items", len(cart.Items)).
		Msg("checkout succeeded")

	return Outcome{Kind: OutcomeSucceeded, Message: message, Confirmation: confirmation}
}

func (o *Orchestrator) fail(err error) Outcome {
	var orderErr *domain.OrderError
	if !errors.As(err, &orderErr) {
		orderErr = &domain.OrderError{Kind: domain.OrderErrorUnknown, Err: err}
	}

	message := MsgOrderFailed
	switch orderErr.Kind {
	case domain.OrderErrorUnauthenticated:
		message = MsgSessionExpired
		o.view.Navigate(o.loginTarget(), o.cfg.LoginRedirectDelay)
	case domain.OrderErrorNotFound:
		message = MsgProductsGone
	case domain.OrderErrorFailedPrecondition:
		message = MsgInsufficientStock
		if orderErr.Message != "" {
			message = orderErr.Message
		}
	default:
		if orderErr.Message != "" {
			message = orderErr.Message
		}
	}

	o.view.Alert(port.AlertError, message)

	o.logger.Warn().Err(err).Stringer("code", orderErr.Kind).Msg("checkout failed")

	return Outcome{Kind: OutcomeFailed, Message: message, Err: orderErr}
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

func (o *Orchestrator) loginTarget() string {
	return o.cfg.LoginPath + "?redirect=" + url.QueryEscape(o.cfg.CartPath)
}

func (o *Orchestrator) confirmationTarget(orderID string) string {
	return o.cfg.ConfirmationPath + "?orderId=" + url.QueryEscape(orderID)
}
