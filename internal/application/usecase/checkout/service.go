// internal/application/usecase/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"cosmetica/internal/application/validation"
	cartdom "cosmetica/internal/domain/cart"
	sessiondom "cosmetica/internal/domain/session"
)

// DefaultDelay simulates payment processing.
const DefaultDelay = 1500 * time.Millisecond

var (
	ErrNotSignedIn = sessiondom.ErrNotSignedIn
	ErrEmptyCart   = errors.New("checkout: cart is empty")
)

// Decision is the outcome of the page guard.
type Decision string

const (
	Proceed         Decision = "proceed"
	RedirectAccount Decision = "redirect_account"
	RedirectCart    Decision = "redirect_cart"
)

// Target is the page a redirect decision points to ("" for Proceed).
func (d Decision) Target() string {
	switch d {
	case RedirectAccount:
		return "/account"
	case RedirectCart:
		return "/cart"
	default:
		return ""
	}
}

// SessionSource is satisfied by auth.Store.
type SessionSource interface {
	Session() sessiondom.Session
}

// Cart is satisfied by cart.Store.
type Cart interface {
	Lines() cartdom.Snapshot
	IsEmpty() bool
	Deduct(submitted cartdom.Snapshot)
}

// Mailer sends the order confirmation. Failures never fail the checkout.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, c Confirmation) error
}

// Form is the shipping form.
type Form struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=40"`
	Address    string `json:"address" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// Confirmation is what the success view shows.
type Confirmation struct {
	OrderNumber string           `json:"orderNumber"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	Lines       cartdom.Snapshot `json:"lines"`
	ItemCount   int              `json:"itemCount"`
	Subtotal    float64          `json:"subtotal"`
	PlacedAt    time.Time        `json:"placedAt"`
}

type Service struct {
	auth   SessionSource
	cart   Cart
	mailer Mailer
	delay  time.Duration
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

func WithMailer(m Mailer) Option { return func(s *Service) { s.mailer = m } }

// WithDelay overrides DefaultDelay; 0 disables the wait.
func WithDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(auth SessionSource, cart Cart, opts ...Option) *Service {
	s := &Service{
		auth:  auth,
		cart:  cart,
		delay: DefaultDelay,
		now:   func() time.Time { return time.Now().UTC() },
		newID: newOrderNumber,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Guard decides whether the checkout page renders.
func (s *Service) Guard() Decision {
	if !s.auth.Session().IsSignedIn() {
		return RedirectAccount
	}
	if s.cart.IsEmpty() {
		return RedirectCart
	}
	return Proceed
}

// Submit places the (simulated) order: validate, wait, then take the submitted
// lines out of the cart. Lines added during the wait stay for a later order.
// Nothing is charged or persisted.
func (s *Service) Submit(ctx context.Context, f Form) (*Confirmation, error) {
	f = trimForm(f)
	if err := validation.Struct(f); err != nil {
		return nil, err
	}
	switch s.Guard() {
	case RedirectAccount:
		return nil, ErrNotSignedIn
	case RedirectCart:
		return nil, ErrEmptyCart
	}

	lines := s.cart.Lines()

	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}

	s.cart.Deduct(lines)

	items := 0
	for _, l := range lines {
		items += l.Quantity
	}
	conf := &Confirmation{
		OrderNumber: s.newID(),
		Email:       f.Email,
		Name:        strings.TrimSpace(f.FirstName + " " + f.LastName),
		Lines:       lines,
		ItemCount:   items,
		Subtotal:    cartdom.Subtotal(lines),
		PlacedAt:    s.now(),
	}
	log.Printf("[checkout] order placed number=%s uid=%s items=%d subtotal=%.2f",
		conf.OrderNumber, s.auth.Session().UID(), conf.ItemCount, conf.Subtotal)

	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(ctx, *conf); err != nil {
			log.Printf("[checkout] confirmation mail failed number=%s err=%v", conf.OrderNumber, err)
		}
	}
	return conf, nil
}

func newOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CS-" + strings.ToUpper(id[:10])
}

func trimForm(f Form) Form {
	for _, p := range []*string{&f.FirstName, &f.LastName, &f.Email, &f.Phone, &f.Address, &f.City, &f.State, &f.PostalCode, &f.Country} {
		*p = strings.TrimSpace(*p)
	}
	return f
}
