package dialogue

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/reframe-app/reframe/internal/genai"
	"github.com/reframe-app/reframe/internal/prompts"
	"github.com/reframe-app/reframe/internal/tokens"
)

// arrayPattern greedily grabs the outermost [...] span in a reply.
var arrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// fallbackSuggestions is the fixed quick-reply list used when generation
// fails.
var fallbackSuggestions = []string{"Tell me more", "That resonates with me", "I'm not sure"}

// SuggestionGenerator produces short quick-reply suggestions the client
// renders as tappable chips.
type SuggestionGenerator struct {
	client genai.ClientInterface
}

// NewSuggestionGenerator creates a SuggestionGenerator.
func NewSuggestionGenerator(client genai.ClientInterface) *SuggestionGenerator {
	return &SuggestionGenerator{client: client}
}

// Generate returns reply suggestions for the given user message. It never
// fails: any provider or parse problem yields the fixed fallback list.
func (g *SuggestionGenerator) Generate(ctx context.Context, message, userContext string) []string {
	prompt := prompts.SuggestionPrompt(message, userContext)

	raw := ""
	if g.client != nil {
		var err error
		raw, err = g.client.GenerateText(ctx, prompt)
		if err != nil {
			slog.Warn("SuggestionGenerator.Generate: provider call failed, using fallback suggestions", "error", err)
			raw = ""
		}
	}

	payload := arrayPattern.FindString(raw)
	if payload == "" {
		slog.Warn("SuggestionGenerator.Generate: no JSON array in response, using fallback suggestions")
		return FallbackSuggestions()
	}

	suggestions, err := tokens.DecodeOptions(payload)
	if err != nil || len(suggestions) == 0 {
		slog.Warn("SuggestionGenerator.Generate: unusable suggestions payload, using fallback suggestions", "error", err)
		return FallbackSuggestions()
	}
	return suggestions
}

// FallbackSuggestions returns a copy of the fixed quick-reply fallback.
func FallbackSuggestions() []string {
	out := make([]string, len(fallbackSuggestions))
	copy(out, fallbackSuggestions)
	return out
}
