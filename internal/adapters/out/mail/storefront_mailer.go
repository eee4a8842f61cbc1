// internal/adapters/out/mail/storefront_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"cosmetica/internal/application/usecase/auth"
	"cosmetica/internal/application/usecase/checkout"
)

// LinkIssuer mints the email verification link (Firebase Admin).
type LinkIssuer interface {
	EmailVerificationLink(ctx context.Context, email, continueURL string) (string, error)
}

// StorefrontMailer sends the registration verification mail and the order
// confirmation mail.
type StorefrontMailer struct {
	client  EmailClient
	from    string
	baseURL string
	links   LinkIssuer
}

var (
	_ auth.VerificationSender = (*StorefrontMailer)(nil)
	_ checkout.Mailer         = (*StorefrontMailer)(nil)
)

// NewStorefrontMailer: links may be nil, in which case the mail points to
// the account page instead of a verification link.
func NewStorefrontMailer(client EmailClient, from, baseURL string, links LinkIssuer) *StorefrontMailer {
	return &StorefrontMailer{
		client:  client,
		from:    strings.TrimSpace(from),
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		links:   links,
	}
}

func (m *StorefrontMailer) SendVerification(ctx context.Context, email, name string) error {
	accountURL := m.baseURL + "/account"
	link := accountURL
	if m.links != nil {
		l, err := m.links.EmailVerificationLink(ctx, email, accountURL)
		if err != nil {
			return fmt.Errorf("mail: verification link: %w", err)
		}
		link = l
	}

	greeting := "Hello,"
	if n := strings.TrimSpace(name); n != "" {
		greeting = fmt.Sprintf("Hello %s,", n)
	}
	body := fmt.Sprintf(`%s

Thanks for creating a Cosmetica account.
Please confirm your email address by opening the link below:

%s

If you did not sign up, you can ignore this message.
`, greeting, link)

	return m.client.Send(ctx, m.from, email, "Confirm your Cosmetica account", body)
}

func (m *StorefrontMailer) SendOrderConfirmation(ctx context.Context, c checkout.Confirmation) error {
	var b strings.Builder
	if n := strings.TrimSpace(c.Name); n != "" {
		fmt.Fprintf(&b, "Hello %s,\n\n", n)
	}
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", c.OrderNumber)
	for _, l := range c.Lines {
		fmt.Fprintf(&b, "  %d x %s  $%.2f\n", l.Quantity, l.Name, l.UnitPrice*float64(l.Quantity))
	}
	fmt.Fprintf(&b, "\nItems: %d\nSubtotal: $%.2f\n", c.ItemCount, c.Subtotal)
	fmt.Fprintf(&b, "Placed: %s\n\nView your account: %s/account\n", c.PlacedAt.UTC().Format("2006-01-02 15:04 MST"), m.baseURL)

	subject := fmt.Sprintf("Your Cosmetica order %s", c.OrderNumber)
	return m.client.Send(ctx, m.from, c.Email, subject, b.String())
}
