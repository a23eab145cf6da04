package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a value object representing a shipping or billing address.
// It is immutable once created.
type Address struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// NewAddress creates a new Address with validation
func NewAddress(name, phone, line1, line2, city, region, postalCode, country string) (Address, error) {
	a := Address{
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		Region:     strings.TrimSpace(region),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if err := a.Validate(); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate checks the address for required fields
func (a Address) Validate() error {
	if a.Name == "" {
		return errors.New("recipient name is required")
	}
	if a.Line1 == "" {
		return errors.New("address line is required")
	}
	if a.City == "" {
		return errors.New("city is required")
	}
	if a.PostalCode == "" {
		return errors.New("postal code is required")
	}
	if len(a.Country) != 2 {
		return errors.New("country must be a two-letter ISO code")
	}
	return nil
}

// IsEmpty returns true if no fields are set
func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Equals returns true if both addresses are identical
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns a single-line representation
func (a Address) String() string {
	parts := []string{a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City)
	if a.Region != "" {
		parts = append(parts, a.Region)
	}
	parts = append(parts, a.PostalCode, a.Country)
	return strings.Join(parts, ", ")
}

// MarshalBinary supports storage in caches that need binary encoding
func (a Address) MarshalBinary() ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalBinary restores an Address from its binary encoding
func (a *Address) UnmarshalBinary(data []byte) error {
	if err := json.Unmarshal(data, a); err != nil {
		return fmt.Errorf("invalid address encoding: %w", err)
	}
	return nil
}
