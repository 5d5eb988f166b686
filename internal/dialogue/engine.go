// Package dialogue implements the four-step coaching protocol: the state
// machine that drives it, the engine that runs one exchange per call, and
// the deterministic fallbacks that keep the protocol moving when the
// provider fails. No entry point in this package returns an error; every
// call yields a fully usable value.
package dialogue

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reframe-app/reframe/internal/genai"
	"github.com/reframe-app/reframe/internal/models"
	"github.com/reframe-app/reframe/internal/prompts"
	"github.com/reframe-app/reframe/internal/tokens"
)

var errNoClient = errors.New("no generation client configured")

// Engine runs one coaching exchange per call: compose the prompt, call the
// provider once, parse the response, and advance the protocol state. A
// failed or empty provider reply is swapped for the step's fallback text and
// then handled identically, so callers cannot tell a degraded turn from a
// normal one except by content.
type Engine struct {
	client   genai.ClientInterface
	composer *prompts.Composer
}

// NewEngine creates an engine from a generation client and a prompt composer.
func NewEngine(client genai.ClientInterface, composer *prompts.Composer) *Engine {
	slog.Debug("Engine.NewEngine: creating engine", "hasClient", client != nil)
	return &Engine{client: client, composer: composer}
}

// Turn executes one dialogue exchange and never returns an error. The
// provider is tried exactly once, with no retry; cancellation and deadlines
// travel in on ctx. The result carries the raw response text, its parsed
// tokens, and the advanced state the caller must hold for the next turn.
func (e *Engine) Turn(ctx context.Context, state models.DialogueState, history []models.ConversationTurn, userContext string, toneTags []string) models.TurnResult {
	prompt := e.composer.Compose(state, history, userContext, toneTags)

	raw, err := e.generate(ctx, prompt)
	if err != nil || raw == "" {
		slog.Warn("Engine.Turn: provider unavailable, using fallback response", "step", state.Step.String(), "error", err)
		raw = FallbackResponse(state.Step)
	}

	return models.TurnResult{
		Response:       raw,
		ParsedResponse: tokens.Parse(raw),
		NewState:       Advance(state, raw),
	}
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	if e.client == nil {
		return "", errNoClient
	}
	return e.client.GenerateText(ctx, prompt)
}
