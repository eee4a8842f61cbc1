package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cosmetica/internal/application/usecase/checkout"
	cartdom "cosmetica/internal/domain/cart"
)

type sentMail struct{ from, to, subject, body string }

type fakeClient struct{ sent []sentMail }

func (f *fakeClient) Send(_ context.Context, from, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{from, to, subject, body})
	return nil
}

type fakeLinks struct {
	link string
	err  error
}

func (f fakeLinks) EmailVerificationLink(_ context.Context, _, continueURL string) (string, error) {
	return f.link + "?continue=" + continueURL, f.err
}

func TestSendVerification_UsesIssuedLink(t *testing.T) {
	fc := &fakeClient{}
	m := NewStorefrontMailer(fc, "shop@example.com", "https://shop.example.com/", fakeLinks{link: "https://auth/verify"})

	if err := m.SendVerification(context.Background(), "ana@example.com", "Ana"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fc.sent) != 1 {
		t.Fatalf("sent = %d", len(fc.sent))
	}
	got := fc.sent[0]
	if got.to != "ana@example.com" || got.from != "shop@example.com" {
		t.Fatalf("mail = %+v", got)
	}
	if !strings.Contains(got.body, "https://auth/verify?continue=https://shop.example.com/account") {
		t.Fatalf("body missing link:\n%s", got.body)
	}
	if !strings.HasPrefix(got.body, "Hello Ana,") {
		t.Fatalf("greeting:\n%s", got.body)
	}
}

func TestSendVerification_LinkErrorIsReturned(t *testing.T) {
	fc := &fakeClient{}
	m := NewStorefrontMailer(fc, "shop@example.com", "https://shop.example.com", fakeLinks{err: errors.New("quota")})
	if err := m.SendVerification(context.Background(), "ana@example.com", ""); err == nil {
		t.Fatalf("expected error")
	}
	if len(fc.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	fc := &fakeClient{}
	m := NewStorefrontMailer(fc, "shop@example.com", "https://shop.example.com", nil)

	err := m.SendOrderConfirmation(context.Background(), checkout.Confirmation{
		OrderNumber: "CS-0A1B2C3D4E",
		Email:       "ana@example.com",
		Name:        "Ana Lee",
		Lines:       cartdom.Snapshot{{ProductID: "p1", Name: "Serum", UnitPrice: 12.5, Quantity: 2}},
		ItemCount:   2,
		Subtotal:    25,
		PlacedAt:    time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	got := fc.sent[0]
	if got.subject != "Your Cosmetica order CS-0A1B2C3D4E" {
		t.Fatalf("subject = %q", got.subject)
	}
	for _, want := range []string{"2 x Serum  $25.00", "Subtotal: $25.00", "https://shop.example.com/account"} {
		if !strings.Contains(got.body, want) {
			t.Errorf("body missing %q:\n%s", want, got.body)
		}
	}
}
