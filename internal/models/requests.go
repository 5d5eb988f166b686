package models

import "errors"

// TurnRequest is the body of a dialogue-turn API call.
type TurnRequest struct {
	// Message is the user's inbound chat message for this turn.
	Message string `json:"message"`
	// UserContext optionally replaces the conversation's long-lived user
	// context string before the turn runs.
	UserContext string `json:"user_context,omitempty"`
	// ToneTags optionally replaces the conversation's reply-style
	// preferences before the turn runs.
	ToneTags []string `json:"tone_tags,omitempty"`
}

// Validate validates a TurnRequest.
func (r *TurnRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if len(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if len(r.UserContext) > MaxUserContextLength {
		return ErrUserContextTooLong
	}
	if len(r.ToneTags) > MaxToneTags {
		return ErrTooManyToneTags
	}
	return nil
}

// ResetRequest is the body of an explicit new-conversation reset. The
// optional user context and tone tags carry over into the fresh conversation.
type ResetRequest struct {
	UserContext string   `json:"user_context,omitempty"`
	ToneTags    []string `json:"tone_tags,omitempty"`
}

// Validate validates a ResetRequest.
func (r *ResetRequest) Validate() error {
	if len(r.UserContext) > MaxUserContextLength {
		return ErrUserContextTooLong
	}
	if len(r.ToneTags) > MaxToneTags {
		return ErrTooManyToneTags
	}
	return nil
}

// ActionGenerateRequest is the body of a standalone single-action synthesis
// call.
type ActionGenerateRequest struct {
	// LimitingBelief is the belief the generated action should counter.
	LimitingBelief string `json:"limiting_belief"`
	// Context is optional free-text background about the user.
	Context string `json:"context,omitempty"`
	// Category optionally pins the life area of the generated action.
	Category ActionCategory `json:"category,omitempty"`
}

// Validate validates an ActionGenerateRequest.
func (r *ActionGenerateRequest) Validate() error {
	if r.LimitingBelief == "" {
		return ErrEmptyLimitingBelief
	}
	if len(r.LimitingBelief) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if r.Category != "" && !IsValidActionCategory(r.Category) {
		return errors.New("invalid action category")
	}
	if len(r.Context) > MaxUserContextLength {
		return ErrUserContextTooLong
	}
	return nil
}

// SuggestionRequest is the body of a quick-reply suggestion call.
type SuggestionRequest struct {
	// Message is the user text the suggested replies should follow from.
	Message string `json:"message"`
	// Context is optional free-text background about the user.
	Context string `json:"context,omitempty"`
}

// Validate validates a SuggestionRequest.
func (r *SuggestionRequest) Validate() error {
	if r.Message == "" {
		return ErrEmptyMessage
	}
	if len(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if len(r.Context) > MaxUserContextLength {
		return ErrUserContextTooLong
	}
	return nil
}
