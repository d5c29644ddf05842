package driven

import (
	"context"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
)

// GenerationRequest carries one instruction and its sampling parameters.
type GenerationRequest struct {
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

// TextGenerator defines the driven port for an external text-generation
// service. Implementations make exactly one upstream call per Generate and
// never retry.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) ([]model.TextPart, error)
}
