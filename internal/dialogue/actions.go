package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/reframe-app/reframe/internal/genai"
	"github.com/reframe-app/reframe/internal/models"
	"github.com/reframe-app/reframe/internal/prompts"
	"github.com/reframe-app/reframe/internal/tokens"
)

// objectPattern greedily grabs the outermost {...} span, tolerating any
// prose the model wraps around the requested JSON object.
var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ActionGenerator synthesizes one standalone action card per call, outside
// any dialogue state.
type ActionGenerator struct {
	client genai.ClientInterface
}

// NewActionGenerator creates an ActionGenerator.
func NewActionGenerator(client genai.ClientInterface) *ActionGenerator {
	return &ActionGenerator{client: client}
}

// Generate returns an action countering the given limiting belief. It never
// fails: a provider error, a reply without a JSON object, or a malformed
// payload all yield the deterministic fallback action instead.
func (g *ActionGenerator) Generate(ctx context.Context, limitingBelief, userContext string, category models.ActionCategory) models.Action {
	prompt := prompts.ActionPrompt(limitingBelief, userContext, category)

	raw := ""
	if g.client != nil {
		var err error
		raw, err = g.client.GenerateText(ctx, prompt)
		if err != nil {
			slog.Warn("ActionGenerator.Generate: provider call failed, using fallback action", "error", err)
			raw = ""
		}
	}

	payload := objectPattern.FindString(raw)
	if payload == "" {
		slog.Warn("ActionGenerator.Generate: no JSON object in response, using fallback action")
		return FallbackAction(limitingBelief, category)
	}

	action, err := tokens.DecodeAction(payload)
	if err != nil {
		slog.Warn("ActionGenerator.Generate: malformed action payload, using fallback action", "error", err)
		return FallbackAction(limitingBelief, category)
	}

	// The generated card answers this belief even when the model leaves the
	// field out of its JSON.
	if action.LimitingBelief == "" {
		action.LimitingBelief = limitingBelief
	}
	return action
}

// FallbackAction is the deterministic action used when synthesis fails. The
// limiting belief is interpolated into the description verbatim; only the id
// differs between calls.
func FallbackAction(limitingBelief string, category models.ActionCategory) models.Action {
	if category == "" || !models.IsValidActionCategory(category) {
		category = models.DefaultActionCategory
	}
	return models.Action{
		ID:              uuid.NewString(),
		Title:           "Challenge the thought",
		Description:     fmt.Sprintf("Write down the belief \"%s\", then list three pieces of evidence from your own life that push back against it.", limitingBelief),
		DurationMinutes: models.DefaultActionDuration,
		Category:        category,
		LimitingBelief:  limitingBelief,
	}
}
