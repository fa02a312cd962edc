package types

import "strings"

// ShippingAddress is collected on the shipping step.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// FullName joins first and last name.
func (a ShippingAddress) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// MissingRequired returns the json names of blank required fields.
func (a ShippingAddress) MissingRequired() []string {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// BillingAddress is the optional separate billing address on payment.
type BillingAddress struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// BillingFromShipping copies the postal fields of a shipping address.
func BillingFromShipping(a ShippingAddress) BillingAddress {
	return BillingAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Address:   a.Address,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
	}
}

// NormalizeEmail trims and lowercases an address so lookups match regardless
// of how the shopper typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
