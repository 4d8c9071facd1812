// Package answerer defines the language-generation capability used to turn
// retrieved context into a grounded answer.
package answerer

import (
	"context"
	"errors"

	"atlas/pkg/models"
)

// ErrUnavailable is returned when the generation model cannot be reached
// or times out. Callers treat it as retryable.
var ErrUnavailable = errors.New("answerer unavailable")

// Answerer generates an answer from a system prompt, the assembled context
// block and the user query.
type Answerer interface {
	Generate(ctx context.Context, systemPrompt, contextBlock, query string) (*models.Generation, error)
}
