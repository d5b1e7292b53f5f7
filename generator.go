package fusion

import (
	"context"
	"fmt"

	"github.com/everydev1618/gofusion/llm"
)

// GenRequest carries everything a generator needs for one step attempt.
type GenRequest struct {
	// Framing is the agent's system-level voice for this step.
	Framing string

	// Prompt is the pattern template with all slots filled.
	Prompt string

	// Context holds the raw substitution values, for generators that want
	// more than the rendered prompt.
	Context map[string]string
}

// Generator produces the text for one step.
type Generator interface {
	Generate(ctx context.Context, req GenRequest) (string, error)
}

// GenFunc adapts a function to the Generator interface.
type GenFunc func(ctx context.Context, req GenRequest) (string, error)

// Generate calls f.
func (f GenFunc) Generate(ctx context.Context, req GenRequest) (string, error) {
	return f(ctx, req)
}

// TemplateGenerator expands steps with no model call: the filled pattern
// template is returned as the step output. Pattern templates are written as
// worked artifacts, so the expansion stands on its own. Useful offline and
// in tests, and fully deterministic.
type TemplateGenerator struct{}

// Generate returns the rendered prompt.
func (TemplateGenerator) Generate(ctx context.Context, req GenRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return req.Prompt, nil
}

// LLMGenerator bridges a model client into the Generator interface.
type LLMGenerator struct {
	client *llm.Client
}

// NewLLMGenerator wraps an Anthropic client.
func NewLLMGenerator(client *llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate sends the framing and prompt to the model. Transport and API
// failures are reported as ErrGenerationUnavailable; cancellation passes
// through as the context error.
func (g *LLMGenerator) Generate(ctx context.Context, req GenRequest) (string, error) {
	out, err := g.client.Complete(ctx, req.Framing, req.Prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	return out, nil
}
