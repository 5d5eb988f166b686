// Package prompts assembles the instruction text sent to the generation
// provider. The provider receives one opaque string and no structured
// schema; the embedded persona text carries the protocol and token grammar
// the model is asked to follow.
package prompts

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/reframe-app/reframe/internal/models"
	"github.com/reframe-app/reframe/internal/tone"
)

//go:embed templates/persona.txt
var defaultPersona string

// HistoryWindow is the number of prior turns included in a dialogue prompt.
const HistoryWindow = 6

// Composer assembles dialogue prompts from protocol state, a bounded
// history window, and optional user context.
type Composer struct {
	persona     string
	personaFile string
}

// Option defines a configuration option for the Composer.
type Option func(*Composer)

// WithPersonaFile configures an external file that replaces the embedded
// persona text once LoadPersona runs. Wording changes then need no rebuild.
func WithPersonaFile(path string) Option {
	return func(c *Composer) {
		c.personaFile = path
	}
}

// NewComposer creates a Composer using the embedded persona text.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{persona: strings.TrimSpace(defaultPersona)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPersona loads the persona text from the configured override file.
// With no file configured the embedded default stays in place.
func (c *Composer) LoadPersona() error {
	if c.personaFile == "" {
		slog.Debug("Composer.LoadPersona: no persona file configured, using embedded default")
		return nil
	}

	if _, err := os.Stat(c.personaFile); os.IsNotExist(err) {
		slog.Error("Composer.LoadPersona: persona file does not exist", "file", c.personaFile)
		return fmt.Errorf("persona file does not exist: %s", c.personaFile)
	}

	content, err := os.ReadFile(c.personaFile)
	if err != nil {
		slog.Error("Composer.LoadPersona: failed to read persona file", "file", c.personaFile, "error", err)
		return fmt.Errorf("failed to read persona file: %w", err)
	}

	c.persona = strings.TrimSpace(string(content))
	slog.Info("Composer.LoadPersona: persona loaded", "file", c.personaFile, "length", len(c.persona))
	return nil
}

// Compose builds the full prompt for one dialogue turn: persona text, the
// guidance for the current protocol step, the reply-style guide when the
// conversation carries tone tags, the recent conversation window, and
// optional user context, in that order.
func (c *Composer) Compose(state models.DialogueState, history []models.ConversationTurn, userContext string, toneTags []string) string {
	sections := []string{c.persona, stepGuidance(state)}

	if guide := tone.BuildStyleGuide(toneTags); guide != "" {
		sections = append(sections, guide)
	}
	if formatted := FormatHistory(history); formatted != "" {
		sections = append(sections, "Conversation so far:\n"+formatted)
	}
	if userContext != "" {
		sections = append(sections, "About the user: "+userContext)
	}

	return strings.Join(sections, "\n\n")
}

// FormatHistory renders the last HistoryWindow turns as speaker-labelled
// lines, oldest first.
func FormatHistory(history []models.ConversationTurn) string {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	lines := make([]string, 0, len(history))
	for _, turn := range history {
		label := "User"
		if turn.Role == models.RoleCoach {
			label = "Coach"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// stepGuidance selects the instruction for the step the next reply must
// perform. It depends only on the protocol state, never on message content.
// Unknown steps get the step-1 guidance, matching how the state machine
// recovers from invalid state.
func stepGuidance(state models.DialogueState) string {
	switch state.Step {
	case models.StepInquire:
		if state.InquiryCount >= models.InquiryTurnsBeforeReframe-1 {
			return "This reply performs step 2 (Inquire) and is your final question before reframing. " +
				"Ask exactly one open question, and name the belief you hear underneath the user's words " +
				"using the phrase: core belief \"...\" with the belief inside the quotes. " +
				"You may add a <BUTTONS> element with short honest answers."
		}
		return "This reply performs step 2 (Inquire). Ask exactly one open question that digs toward " +
			"what the user believes about themselves in this situation. Do not advise or reframe yet. " +
			"You may add a <BUTTONS> element with short honest answers."
	case models.StepReframe:
		if state.CoreBelief != "" {
			return fmt.Sprintf("This reply performs step 3 (Reframe). The user's core belief is %q. "+
				"Offer a gentler, more truthful way to see it. Do not dismiss the feeling behind it, "+
				"and do not suggest actions yet.", state.CoreBelief)
		}
		return "This reply performs step 3 (Reframe). Offer a gentler, more truthful perspective on " +
			"the situation the user described. Do not dismiss the feeling behind it, and do not " +
			"suggest actions yet."
	case models.StepAct:
		return "This reply performs step 4 (Act). Suggest one small, concrete action the user can " +
			"take in the next few minutes, and include exactly one <ACTION> element describing it. " +
			"Keep the visible text to a sentence or two of encouragement."
	default:
		return "This reply performs step 1 (Validate). Acknowledge and validate the user's feeling " +
			"in one or two warm sentences. Do not give advice and do not ask probing questions yet; " +
			"end with a gentle invitation to share more."
	}
}
