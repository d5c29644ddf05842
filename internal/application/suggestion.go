package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// SuggestionDelimiter separates prompts in the generator's single-string answer.
const SuggestionDelimiter = "||"

const suggestionInstruction = "Generate three unique, engaging, and thought-provoking questions for an anonymous social messaging platform. " +
	"The questions should be formatted as a single string, separated by '||'. Avoid personal or sensitive topics, focusing on universal themes. " +
	"Examples: 'What's a hobby you've recently started?||If you could have dinner with any historical figure, who would it be?||What's a simple thing that makes you happy?'."

// Generation parameters for suggestion requests.
const (
	suggestionTemperature     = 0.8
	suggestionMaxOutputTokens = 400
)

// DefaultSuggestions is the fixed batch shown on first load or when live
// suggestions are unavailable.
func DefaultSuggestions() []string {
	return []string{
		"What's your favorite movie?",
		"Do you have any pets?",
		"What's your dream job?",
	}
}

// SuggestionService fetches draft prompts from an external text generator.
// Each Suggest is a single attempt with no retry.
type SuggestionService struct {
	generator driven.TextGenerator // nil when no generator is configured.
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSuggestionService creates a SuggestionService. generator may be nil, in
// which case every Suggest reports ErrSuggestionUnavailable. A zero timeout
// leaves the caller's context as the only bound.
func NewSuggestionService(generator driven.TextGenerator, timeout time.Duration, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
	}
}

// Suggest issues one generation request and parses the answer into prompts.
// Upstream errors, timeouts, and answers with no usable segment all yield
// ErrSuggestionUnavailable.
func (s *SuggestionService) Suggest(ctx context.Context) ([]string, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrSuggestionUnavailable)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	parts, err := s.generator.Generate(ctx, driven.GenerationRequest{
		Prompt:          suggestionInstruction,
		Temperature:     suggestionTemperature,
		MaxOutputTokens: suggestionMaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSuggestionUnavailable, err)
	}

	suggestions := ParseSuggestions(parts)
	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: empty or malformed response", ErrSuggestionUnavailable)
	}

	return suggestions, nil
}

// SuggestOrDefault returns live suggestions, or the default batch with
// fallback=true when they are unavailable. It never returns an empty batch.
func (s *SuggestionService) SuggestOrDefault(ctx context.Context) (batch []string, fallback bool) {
	suggestions, err := s.Suggest(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			s.logger.Debug("suggestion request cancelled", "error", err)
		} else {
			s.logger.Warn("suggestions unavailable, using defaults", "error", err)
		}
		return DefaultSuggestions(), true
	}
	return suggestions, false
}

// ParseSuggestions extracts the text of every part, joins them in order, and
// splits the result into prompts.
func ParseSuggestions(parts []model.TextPart) []string {
	var b strings.Builder
	for _, p := range parts {
		if p == nil {
			continue
		}
		b.WriteString(p.Text())
	}
	return SplitSuggestions(b.String())
}

// SplitSuggestions splits raw on the delimiter, trims each segment, and drops
// empty ones.
func SplitSuggestions(raw string) []string {
	var out []string
	for _, seg := range strings.Split(raw, SuggestionDelimiter) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
