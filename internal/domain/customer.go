package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Tier represents a customer subscription level. It governs how many open
// topics a customer may hold and how many generations are allowed per
// rolling 24 hour window (see TierLimits).
type Tier string

// Possible customer tiers.
const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// Common validation errors for Customer.
var (
	ErrCustomerIDEmpty      = errors.New("customer ID cannot be empty")
	ErrCustomerEmailInvalid = errors.New("customer email is invalid")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Customer represents a registered user of the learning reminder service.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomer creates a new Customer with the given email and tier.
// Unknown tiers are normalized to basic. Returns an error if validation fails.
func NewCustomer(email string, tier Tier) (*Customer, error) {
	if !isValidTier(tier) {
		tier = TierBasic
	}

	customer := &Customer{
		ID:        uuid.New(),
		Email:     email,
		Tier:      tier,
		CreatedAt: time.Now().UTC(),
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}

	return customer, nil
}

// Validate checks if the Customer has valid data.
func (c *Customer) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCustomerIDEmpty
	}

	if !emailRegex.MatchString(c.Email) {
		return ErrCustomerEmailInvalid
	}

	return nil
}

// isValidTier checks if the given tier is a known Tier.
func isValidTier(tier Tier) bool {
	switch tier {
	case TierBasic, TierStandard, TierPremium:
		return true
	default:
		return false
	}
}
