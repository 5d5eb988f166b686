package dialogue

import "github.com/reframe-app/reframe/internal/models"

// fallbackResponses is the fixed canned reply per protocol step, used when
// the provider call fails or returns nothing. The step-4 entry carries a
// well-formed <ACTION> token so even a degraded turn yields an action card.
var fallbackResponses = map[models.Step]string{
	models.StepValidate: "That sounds really hard, and it makes sense that you feel this way. " +
		"Whatever you're carrying right now, you don't have to carry it perfectly. " +
		"Would you like to tell me a bit more about what's going on?",
	models.StepInquire: "I hear you. Let's slow down for a moment: when that feeling shows up, " +
		"what does it seem to say about you?",
	models.StepReframe: "Here's another way to look at it: the thought that feels so absolute " +
		"right now is a story your mind learned to tell, not a fact about who you are. " +
		"Stories can be rewritten, one small scene at a time.",
	models.StepAct: "Let's make this real with one tiny step. " +
		`<ACTION>{"title":"Take one small step","description":"Pick one thing from our conversation you can do in the next five minutes, and do it imperfectly.","duration":5,"category":"action"}</ACTION>`,
}

// FallbackResponse returns the canned reply for the given step. Unknown
// steps get the step-1 reply, matching the state machine's recovery.
func FallbackResponse(step models.Step) string {
	if resp, ok := fallbackResponses[step]; ok {
		return resp
	}
	return fallbackResponses[models.StepValidate]
}
