package checkout

import (
	"strings"
	"time"

	"github.com/artisanmarket/storefront/pkg/enums"
	"github.com/artisanmarket/storefront/pkg/types"
)

const defaultCountry = "US"

// PaymentDetails holds the card fields collected on the payment step. They
// are never charged or checked beyond presence.
type PaymentDetails struct {
	CardNumber         string               `json:"cardNumber"`
	ExpiryDate         string               `json:"expiryDate"`
	CVV                string               `json:"cvv"`
	CardName           string               `json:"cardName"`
	BillingAddressSame bool                 `json:"billingAddressSame"`
	BillingAddress     types.BillingAddress `json:"billingAddress"`
}

// Draft is a session's in-progress checkout.
type Draft struct {
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentDetails  PaymentDetails        `json:"paymentDetails"`
	IsGuest         bool                  `json:"isGuest"`
	GuestEmail      string                `json:"guestEmail"`
	CurrentStep     enums.CheckoutStep    `json:"currentStep"`
	// SubmissionToken is minted on entering review and keys order creation.
	SubmissionToken string    `json:"submissionToken,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewDraft returns a draft on the shipping step with guest checkout and
// billing-same-as-shipping selected.
func NewDraft() *Draft {
	return &Draft{
		ShippingAddress: types.ShippingAddress{Country: defaultCountry},
		PaymentDetails: PaymentDetails{
			BillingAddressSame: true,
			BillingAddress:     types.BillingAddress{Country: defaultCountry},
		},
		IsGuest:     true,
		CurrentStep: enums.CheckoutStepShipping,
	}
}

// missingPayment returns the json names of blank card fields.
func (p PaymentDetails) missingPayment() []string {
	required := []struct {
		name  string
		value string
	}{
		{"cardNumber", p.CardNumber},
		{"expiryDate", p.ExpiryDate},
		{"cvv", p.CVV},
		{"cardName", p.CardName},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// MaskedCardNumber keeps only the last four digits.
func MaskedCardNumber(cardNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, cardNumber)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "**** **** **** " + digits
}

// billing resolves the address stored on the order.
func (d *Draft) billing() types.BillingAddress {
	if d.PaymentDetails.BillingAddressSame {
		return types.BillingFromShipping(d.ShippingAddress)
	}
	return d.PaymentDetails.BillingAddress
}

// customerEmail is the guest email for guests, otherwise the account email,
// falling back to the shipping email.
func (d *Draft) customerEmail(accountEmail string) string {
	if d.IsGuest {
		return strings.TrimSpace(d.GuestEmail)
	}
	if email := strings.TrimSpace(accountEmail); email != "" {
		return email
	}
	return strings.TrimSpace(d.ShippingAddress.Email)
}

// DraftView is the client-facing draft. Card data is masked and the CVV is
// never echoed back.
type DraftView struct {
	ShippingAddress    types.ShippingAddress `json:"shippingAddress"`
	CardNumber         string                `json:"cardNumber"`
	ExpiryDate         string                `json:"expiryDate"`
	CardName           string                `json:"cardName"`
	HasCVV             bool                  `json:"hasCvv"`
	BillingAddressSame bool                  `json:"billingAddressSame"`
	BillingAddress     types.BillingAddress  `json:"billingAddress"`
	IsGuest            bool                  `json:"isGuest"`
	GuestEmail         string                `json:"guestEmail"`
	CurrentStep        enums.CheckoutStep    `json:"currentStep"`
	SubmissionToken    string                `json:"submissionToken,omitempty"`
}

// View is the client-facing copy of the draft: the card number is masked
// and the CVV is reduced to whether one was entered.
func (d *Draft) View() DraftView {
	view := DraftView{
		ShippingAddress:    d.ShippingAddress,
		ExpiryDate:         d.PaymentDetails.ExpiryDate,
		CardName:           d.PaymentDetails.CardName,
		HasCVV:             strings.TrimSpace(d.PaymentDetails.CVV) != "",
		BillingAddressSame: d.PaymentDetails.BillingAddressSame,
		BillingAddress:     d.PaymentDetails.BillingAddress,
		IsGuest:            d.IsGuest,
		GuestEmail:         d.GuestEmail,
		CurrentStep:        d.CurrentStep,
		SubmissionToken:    d.SubmissionToken,
	}
	if strings.TrimSpace(d.PaymentDetails.CardNumber) != "" {
		view.CardNumber = MaskedCardNumber(d.PaymentDetails.CardNumber)
	}
	return view
}
