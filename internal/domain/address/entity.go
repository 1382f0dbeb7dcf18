package address

import (
	"errors"
	"time"
)

var (
	// ErrAddressNotFound indicates the address does not exist or belongs to another user.
	ErrAddressNotFound = errors.New("address not found")
	// ErrDefaultConflict means concurrent writers kept claiming the default address.
	ErrDefaultConflict = errors.New("default address changed concurrently")
)

// DefaultCountry is applied when an address is saved without a country.
const DefaultCountry = "Philippines"

// Type says what an address may be used for.
type Type string

const (
	TypeShipping Type = "shipping"
	TypeBilling  Type = "billing"
	TypeBoth     Type = "both"
)

// Address is a user-owned postal address.
type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name" validate:"required,max=255"`
	Phone        string    `json:"phone" validate:"required,max=32"`
	AddressLine1 string    `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string    `json:"address_line2,omitempty" validate:"max=255"`
	City         string    `json:"city" validate:"required,max=100"`
	State        string    `json:"state" validate:"required,max=100"`
	PostalCode   string    `json:"postal_code" validate:"required,max=20"`
	Country      string    `json:"country" validate:"required,max=100"`
	IsDefault    bool      `json:"is_default"`
	Type         Type      `json:"type" validate:"required,oneof=shipping billing both"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch lists optional field updates; nil fields are left untouched.
type Patch struct {
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"is_default"`
	Type         *Type   `json:"type"`
}

// Apply copies the set fields of p onto a.
func (a *Address) Apply(p Patch) {
	setString(&a.FullName, p.FullName)
	setString(&a.Phone, p.Phone)
	setString(&a.AddressLine1, p.AddressLine1)
	setString(&a.AddressLine2, p.AddressLine2)
	setString(&a.City, p.City)
	setString(&a.State, p.State)
	setString(&a.PostalCode, p.PostalCode)
	setString(&a.Country, p.Country)
	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
}

// ApplyDefaults fills country and type when left blank.
func (a *Address) ApplyDefaults() {
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if a.Type == "" {
		a.Type = TypeBoth
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
