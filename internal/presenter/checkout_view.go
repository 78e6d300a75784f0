package presenter

import (
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/oja-market/internal/port"
)

type Alert struct {
	Level   port.AlertLevel `json:"level"`
	Message string          `json:"message"`
}

type Redirect struct {
	Target string        `json:"target"`
	After  time.Duration `json:"after"`
}

// Effects are the UI changes requested since the last Flush.
type Effects struct {
	CheckoutEnabled bool      `json:"checkoutEnabled"`
	Alerts          []Alert   `json:"alerts"`
	Redirect        *Redirect `json:"redirect,omitempty"`
}

// CheckoutView records what the checkout flow asks the UI to do. It is safe
// for concurrent use.
type CheckoutView struct {
	mu       sync.Mutex
	enabled  bool
	alerts   []Alert
	redirect *Redirect
}

var _ port.CheckoutView = (*CheckoutView)(nil)

func NewCheckoutView() *CheckoutView {
	return &CheckoutView{enabled: true}
}

func (v *CheckoutView) SetCheckoutEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.enabled = enabled
}

func (v *CheckoutView) Alert(level port.AlertLevel, message string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.alerts = append(v.alerts, Alert{Level: level, Message: message})
}

// Navigate keeps the latest request; a later navigation supersedes it.
func (v *CheckoutView) Navigate(target string, after time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.redirect = &Redirect{Target: target, After: after}
}

func (v *CheckoutView) CheckoutEnabled() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.enabled
}

// Flush returns the recorded effects and clears alerts and redirect.
func (v *CheckoutView) Flush() Effects {
	v.mu.Lock()
	defer v.mu.Unlock()

	effects := Effects{
		CheckoutEnabled: v.enabled,
		Alerts:          slices.Clone(v.alerts),
		Redirect:        v.redirect,
	}
	if effects.Alerts == nil {
		effects.Alerts = []Alert{}
	}

	v.alerts = nil
	v.redirect = nil

	return effects
}
