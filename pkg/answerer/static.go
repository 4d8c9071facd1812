package answerer

import (
	"context"

	"atlas/pkg/models"
)

// Static is an Answerer returning a fixed response. It backs tests and
// offline deployments where no generation model is configured.
type Static struct {
	Text      string
	Model     string
	Usage     models.TokenUsage
	Err       error
	LastQuery string
	LastCtx   string
}

// Generate records its inputs and returns the configured response.
func (a *Static) Generate(ctx context.Context, systemPrompt, contextBlock, query string) (*models.Generation, error) {
	a.LastCtx = contextBlock
	a.LastQuery = query
	if a.Err != nil {
		return nil, a.Err
	}
	return &models.Generation{Text: a.Text, Model: a.Model, Usage: a.Usage}, nil
}
