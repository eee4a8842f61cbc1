// internal/domain/customer/entity.go
package customer

import (
	"errors"
	"strings"
	"time"
)

// Profile is the customer profile row. ID is the auth identity (Firebase UID).
// The signed-in session is the only writer; cached copies may be stale until refetched.
type Profile struct {
	ID            string    `json:"id" firestore:"id"`
	Email         string    `json:"email" firestore:"email"`
	FirstName     string    `json:"firstName" firestore:"firstName"`
	LastName      string    `json:"lastName" firestore:"lastName"`
	Phone         *string   `json:"phone,omitempty" firestore:"phone"`
	Address       *string   `json:"address,omitempty" firestore:"address"`
	City          *string   `json:"city,omitempty" firestore:"city"`
	State         *string   `json:"state,omitempty" firestore:"state"`
	PostalCode    *string   `json:"postalCode,omitempty" firestore:"postalCode"`
	Country       *string   `json:"country,omitempty" firestore:"country"`
	LoyaltyPoints int       `json:"loyaltyPoints" firestore:"loyaltyPoints"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// AddressFields is a partial address update; nil means "no change".
type AddressFields struct {
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// Patch is a partial profile update; nil means "no change".
type Patch struct {
	FirstName *string
	LastName  *string
	AddressFields
}

func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.AddressFields.IsEmpty()
}

// Errors (single source)
var (
	ErrNotFound         = errors.New("customer: not found")
	ErrInvalidID        = errors.New("customer: invalid id")
	ErrInvalidFirstName = errors.New("customer: invalid firstName")
	ErrInvalidLastName  = errors.New("customer: invalid lastName")
	ErrInvalidPoints    = errors.New("customer: invalid loyaltyPoints")
	ErrInvalidCreatedAt = errors.New("customer: invalid createdAt")
)

// Policy
var (
	MaxNameLength = 100
)

// NewProvisioned builds the row created on first sign-in (or registration):
// empty names unless given, zero points.
func NewProvisioned(id, email, firstName, lastName string, now time.Time) (Profile, error) {
	now = now.UTC()
	p := Profile{
		ID:        strings.TrimSpace(id),
		Email:     strings.TrimSpace(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Apply returns a copy of p with patch applied and UpdatedAt touched.
func (p Profile) Apply(patch Patch, now time.Time) (Profile, error) {
	if patch.FirstName != nil {
		p.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		p.LastName = strings.TrimSpace(*patch.LastName)
	}
	p = p.ApplyAddress(patch.AddressFields)
	if !now.IsZero() {
		p.UpdatedAt = now.UTC()
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ApplyAddress returns a copy of p with the given address fields set.
// An empty string clears the field.
func (p Profile) ApplyAddress(a AddressFields) Profile {
	set := func(dst **string, v *string) {
		if v == nil {
			return
		}
		*dst = normalizePtr(v)
	}
	set(&p.Phone, a.Phone)
	set(&p.Address, a.Address)
	set(&p.City, a.City)
	set(&p.State, a.State)
	set(&p.PostalCode, a.PostalCode)
	set(&p.Country, a.Country)
	return p
}

// FullName is "First Last" with empty parts skipped.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Validate checks profile invariants.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrInvalidID
	}
	if len([]rune(p.FirstName)) > MaxNameLength {
		return ErrInvalidFirstName
	}
	if len([]rune(p.LastName)) > MaxNameLength {
		return ErrInvalidLastName
	}
	if p.LoyaltyPoints < 0 {
		return ErrInvalidPoints
	}
	if p.CreatedAt.IsZero() {
		return ErrInvalidCreatedAt
	}
	return nil
}

// IsEmpty reports whether no address field is set.
func (a AddressFields) IsEmpty() bool {
	return a.Phone == nil && a.Address == nil && a.City == nil &&
		a.State == nil && a.PostalCode == nil && a.Country == nil
}

func normalizePtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
