package generation

import (
	"context"

	"github.com/google/uuid"
)

// Generator defines the interface for generating learning content from a
// prompt. This interface serves as a boundary between the application core
// and external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	// Generate produces new learning content for the given prompt. The
	// customer ID is passed through for attribution and per-customer
	// observability; it does not influence the model output.
	//
	// Returns the generated content, or an error if generation fails
	// (see errors.go for the taxonomy).
	Generate(ctx context.Context, prompt string, customerID uuid.UUID) (string, error)
}
