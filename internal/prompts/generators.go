package prompts

import (
	"fmt"
	"strings"

	"github.com/reframe-app/reframe/internal/models"
)

// ActionPrompt builds the one-shot prompt for standalone action synthesis.
// The reply is requested as exactly one JSON object shaped like an action
// payload; the caller extracts and decodes it defensively.
func ActionPrompt(limitingBelief, userContext string, category models.ActionCategory) string {
	var b strings.Builder
	b.WriteString("You design one small, concrete action that helps a person loosen a limiting belief.\n\n")
	fmt.Fprintf(&b, "Limiting belief: %q\n", limitingBelief)
	if userContext != "" {
		fmt.Fprintf(&b, "About the user: %s\n", userContext)
	}
	if category != "" {
		fmt.Fprintf(&b, "Life area: %s\n", category)
	}
	b.WriteString("\nReply with exactly one JSON object and nothing else, shaped like:\n")
	b.WriteString(`{"title": "...", "description": "...", "duration": 5, "category": "action", "limitingBelief": "..."}` + "\n")
	b.WriteString(`"duration" is minutes between 1 and 30. "category" is one of: action, mindset, health, career, connection, growth. Use strictly valid JSON with double quotes.`)
	return b.String()
}

// SuggestionPrompt builds the one-shot prompt for quick-reply suggestions.
// The reply is requested as exactly one JSON array of three short strings.
func SuggestionPrompt(message, userContext string) string {
	var b strings.Builder
	b.WriteString("You suggest short replies a person could tap to continue a coaching conversation.\n\n")
	fmt.Fprintf(&b, "The user just said: %q\n", message)
	if userContext != "" {
		fmt.Fprintf(&b, "About the user: %s\n", userContext)
	}
	b.WriteString("\nReply with exactly one JSON array of three short strings and nothing else, like:\n")
	b.WriteString(`["first reply", "second reply", "third reply"]` + "\n")
	b.WriteString("Each string is a natural next message from the user, at most eight words, no emoji. Use strictly valid JSON with double quotes.")
	return b.String()
}
