// Package app wires the storefront core for one shopper: the session, the
// cart store, the catalog and the checkout orchestrator.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/oja-market/internal/cartstore"
	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/checkout"
	"github.com/nikolayk812/oja-market/internal/domain"
	"github.com/nikolayk812/oja-market/internal/money"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/nikolayk812/oja-market/internal/presenter"
	"github.com/rs/zerolog"
)

var ErrOutOfStock = errors.New("product is out of stock")

type Deps struct {
	Identity  port.IdentityProvider
	Cart      *cartstore.Store
	Catalog   *catalog.Service
	Orders    port.OrderService
	Formatter *money.Formatter
	Totals    domain.TotalsConfig
	Checkout  checkout.Config
	Logger    zerolog.Logger
}

// App is the single owner of shopper state. Cart mutations go through the
// cart store and checkout goes through the orchestrator.
type App struct {
	identity  port.IdentityProvider
	cart      *cartstore.Store
	catalog   *catalog.Service
	formatter *money.Formatter
	totals    domain.TotalsConfig
	view      *presenter.CheckoutView
	checkout  *checkout.Orchestrator
	logger    zerolog.Logger

	mu          sync.RWMutex
	session     *domain.Session
	unsubscribe func()
}

// New loads the persisted cart and subscribes to session changes. Close
// releases the subscription.
func New(ctx context.Context, deps Deps) *App {
	a := &App{
		identity:  deps.Identity,
		cart:      deps.Cart,
		catalog:   deps.Catalog,
		formatter: deps.Formatter,
		totals:    deps.Totals,
		view:      presenter.NewCheckoutView(),
		logger:    deps.Logger.With().Str("component", "app").Logger(),
	}

	a.checkout = checkout.New(a, a.cart, deps.Orders, a.view, a.formatter, deps.Checkout, deps.Logger)

	a.cart.Load(ctx)
	a.unsubscribe = a.identity.OnSessionChange(a.onSessionChange)

	return a
}

func (a *App) Close() {
	a.unsubscribe()
}

func (a *App) onSessionChange(session *domain.Session) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	if session == nil {
		a.logger.Debug().Msg("signed out")
		return
	}
	a.logger.Debug().Str("userId", session.UserID).Msg("signed in")
}

// CurrentSession returns the session last delivered by the identity
// provider, or nil.
func (a *App) CurrentSession() *domain.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil {
		return nil
	}
	session := *a.session
	return &session
}

func (a *App) SignUp(ctx context.Context, email, password string) (domain.Session, error) {
	return a.identity.SignUp(ctx, email, password)
}

func (a *App) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	return a.identity.SignIn(ctx, email, password)
}

func (a *App) SignOut(ctx context.Context) error {
	return a.identity.SignOut(ctx)
}

func (a *App) Catalog() *catalog.Service {
	return a.catalog
}

func (a *App) Formatter() *money.Formatter {
	return a.formatter
}

func (a *App) Cart() domain.Cart {
	return a.cart.Cart()
}

func (a *App) Totals() domain.OrderTotals {
	return domain.ComputeTotals(a.cart.Cart(), a.totals)
}

func (a *App) VendorGroups() []domain.VendorGroup {
	return domain.GroupByVendor(a.cart.Cart())
}

func (a *App) CartView() presenter.CartView {
	return presenter.BuildCart(a.cart.Cart(), a.totals, a.formatter)
}

// AddProduct snapshots the catalog product into the cart.
func (a *App) AddProduct(ctx context.Context, productID string, quantity int) error {
	product, err := a.catalog.Product(ctx, productID)
	if err != nil {
		return fmt.Errorf("catalog.Product: %w", err)
	}
	if !product.InStock() {
		return ErrOutOfStock
	}

	return a.cart.Add(ctx, product.ID, product.Snapshot(), quantity)
}

func (a *App) UpdateQuantity(ctx context.Context, index, delta int) (removed bool) {
	return a.cart.UpdateQuantity(ctx, index, delta)
}

func (a *App) Remove(ctx context.Context, index int) (domain.CartLineItem, bool) {
	return a.cart.Remove(ctx, index)
}

func (a *App) Clear(ctx context.Context) {
	a.cart.Clear(ctx)
}

// Checkout runs one attempt and returns the UI effects it produced.
func (a *App) Checkout(ctx context.Context, req checkout.Request) (checkout.Outcome, presenter.Effects) {
	outcome := a.checkout.Checkout(ctx, req)
	if outcome.Kind == checkout.OutcomeSkipped {
		// the attempt in flight owns the pending effects
		return outcome, presenter.Effects{CheckoutEnabled: a.view.CheckoutEnabled(), Alerts: []presenter.Alert{}}
	}
	return outcome, a.view.Flush()
}

func (a *App) CheckoutState() checkout.State {
	return a.checkout.State()
}
