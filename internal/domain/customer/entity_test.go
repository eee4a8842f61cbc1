package customer

import (
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func TestNewProvisioned_ZeroPointsEmptyNames(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p, err := NewProvisioned("uid-1", "a@example.com", "", "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.LoyaltyPoints != 0 || p.FirstName != "" || p.LastName != "" {
		t.Fatalf("unexpected provisioned profile: %+v", p)
	}
	if !p.CreatedAt.Equal(now) {
		t.Fatalf("createdAt = %v, want %v", p.CreatedAt, now)
	}
}

func TestNewProvisioned_RequiresID(t *testing.T) {
	if _, err := NewProvisioned(" ", "a@example.com", "", "", time.Now()); err != ErrInvalidID {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestApply_PatchesOnlyGivenFields(t *testing.T) {
	base, _ := NewProvisioned("uid-1", "a@example.com", "Ann", "Lee", time.Now())
	base.City = strp("Hanoi")

	later := base.CreatedAt.Add(time.Hour)
	got, err := base.Apply(Patch{
		FirstName:     strp(" Anna "),
		AddressFields: AddressFields{Phone: strp("0123"), City: strp("")},
	}, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FirstName != "Anna" || got.LastName != "Lee" {
		t.Fatalf("names = %q %q", got.FirstName, got.LastName)
	}
	if got.Phone == nil || *got.Phone != "0123" {
		t.Fatalf("phone not set: %v", got.Phone)
	}
	if got.City != nil {
		t.Fatalf("empty string should clear city, got %q", *got.City)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Fatalf("updatedAt not touched")
	}
	if base.Phone != nil {
		t.Fatalf("Apply must not mutate the receiver")
	}
}

func TestValidate_NegativePoints(t *testing.T) {
	p, _ := NewProvisioned("uid-1", "", "", "", time.Now())
	p.LoyaltyPoints = -1
	if err := p.Validate(); err != ErrInvalidPoints {
		t.Fatalf("err = %v, want ErrInvalidPoints", err)
	}
}
