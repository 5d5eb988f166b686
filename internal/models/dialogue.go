package models

// Step is a position in the four-step coaching protocol.
type Step int

const (
	// StepValidate acknowledges the user's feeling before anything else.
	StepValidate Step = 1
	// StepInquire asks exactly one probing question per turn.
	StepInquire Step = 2
	// StepReframe offers a perspective shift on the identified belief.
	StepReframe Step = 3
	// StepAct proposes one small concrete action.
	StepAct Step = 4
)

// String returns a short human-readable label for log output.
func (s Step) String() string {
	switch s {
	case StepValidate:
		return "validate"
	case StepInquire:
		return "inquire"
	case StepReframe:
		return "reframe"
	case StepAct:
		return "act"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the four protocol steps.
func (s Step) IsValid() bool {
	return s >= StepValidate && s <= StepAct
}

// InquiryTurnsBeforeReframe is how many inquiry turns run before the
// protocol moves on to reframing. The turn whose increment reaches this
// count already lands in step 3.
const InquiryTurnsBeforeReframe = 2

// DialogueState is the progress of one conversation through the coaching
// protocol. It is a plain value: the engine returns an advanced copy each
// turn and never mutates the caller's state.
type DialogueState struct {
	// Step is the protocol step the next coach response should perform.
	Step Step `json:"step"`
	// ValidationComplete is set once the opening validation turn has happened.
	ValidationComplete bool `json:"validation_complete"`
	// InquiryCount counts inquiry turns taken so far, controlling how long
	// the dialogue lingers in step 2 before reframing.
	InquiryCount int `json:"inquiry_count"`
	// CoreBelief is the limiting belief captured from coach responses during
	// inquiry. Empty means not yet identified.
	CoreBelief string `json:"core_belief,omitempty"`
	// ReframeGiven is set once a reframe turn has happened.
	ReframeGiven bool `json:"reframe_given"`
}

// NewDialogueState returns the starting state for a fresh conversation.
func NewDialogueState() DialogueState {
	return DialogueState{Step: StepValidate}
}
