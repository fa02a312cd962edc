package enums

import "fmt"

// CheckoutStep is a position in the shipping -> payment -> review flow.
type CheckoutStep string

const (
	CheckoutStepShipping CheckoutStep = "shipping"
	CheckoutStepPayment  CheckoutStep = "payment"
	CheckoutStepReview   CheckoutStep = "review"
)

var orderedCheckoutSteps = []CheckoutStep{
	CheckoutStepShipping,
	CheckoutStepPayment,
	CheckoutStepReview,
}

func (s CheckoutStep) String() string {
	return string(s)
}

func (s CheckoutStep) IsValid() bool {
	return s.Index() >= 0
}

// Index is the zero-based position of the step, or -1 when unknown.
func (s CheckoutStep) Index() int {
	for i, candidate := range orderedCheckoutSteps {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Next returns the following step; the last step has none.
func (s CheckoutStep) Next() (CheckoutStep, bool) {
	i := s.Index()
	if i < 0 || i == len(orderedCheckoutSteps)-1 {
		return s, false
	}
	return orderedCheckoutSteps[i+1], true
}

// Previous returns the preceding step; the first step has none.
func (s CheckoutStep) Previous() (CheckoutStep, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return orderedCheckoutSteps[i-1], true
}

func ParseCheckoutStep(value string) (CheckoutStep, error) {
	step := CheckoutStep(value)
	if !step.IsValid() {
		return "", fmt.Errorf("invalid checkout step %q", value)
	}
	return step, nil
}
