package dialogue

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/reframe-app/reframe/internal/models"
)

// beliefPattern spots a coach response naming the user's limiting belief: a
// trigger phrase followed by a quoted or colon-delimited clause. The
// heuristic is deliberately loose and a miss is fine; the belief just stays
// unset and the reframe prompt degrades to its generic form.
var beliefPattern = regexp.MustCompile(`(?i)(?:core belief|root belief|underlying belief|you believe|the story)[^:"\n]*(?:"([^"\n]+)"|:[ \t]*"?([^"\n.!?]+))`)

// Advance computes the state that follows one completed exchange. It is a
// pure function of the current state and the raw response text; the parsed
// token stream never influences transitions. Step 4 wraps back to step 2, so
// the protocol has no terminal state. An invalid step restarts the protocol
// from step 1.
func Advance(state models.DialogueState, responseText string) models.DialogueState {
	if !state.Step.IsValid() {
		slog.Warn("Dialogue.Advance: invalid step, restarting protocol", "step", int(state.Step))
		state = models.NewDialogueState()
	}

	next := state
	switch state.Step {
	case models.StepValidate:
		next.Step = models.StepInquire
		next.ValidationComplete = true
	case models.StepInquire:
		next.InquiryCount = state.InquiryCount + 1
		if next.InquiryCount >= models.InquiryTurnsBeforeReframe {
			next.Step = models.StepReframe
			if belief := ExtractCoreBelief(responseText); belief != "" {
				next.CoreBelief = belief
			}
		}
	case models.StepReframe:
		next.Step = models.StepAct
		next.ReframeGiven = true
	case models.StepAct:
		next.Step = models.StepInquire
		next.InquiryCount = 0
		next.ReframeGiven = false
	}
	return next
}

// ExtractCoreBelief scans a coach response for a named limiting belief and
// returns the first captured clause, trimmed. It returns "" when nothing
// matches; callers keep any previously identified belief in that case.
func ExtractCoreBelief(text string) string {
	m := beliefPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	capture := m[1]
	if capture == "" {
		capture = m[2]
	}
	return strings.TrimSpace(capture)
}
