package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
)

// CustomerStore provides read access to customers.
type CustomerStore interface {
	// FindByID returns the customer with the given ID, or
	// domain.ErrCustomerNotFound if no such customer exists.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}
