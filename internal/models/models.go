// Package models defines the core data structures for Reframe.
//
// It includes the dialogue state, parsed-message token types, and action
// cards, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// TokenType identifies the kind of a ChatToken.
type TokenType string

const (
	// TokenTypeText is a plain free-text segment.
	TokenTypeText TokenType = "text"
	// TokenTypeButtons is a multiple-choice prompt rendered as tappable options.
	TokenTypeButtons TokenType = "buttons"
	// TokenTypeAction is an actionable task card.
	TokenTypeAction TokenType = "action"
)

// ChatToken is one typed unit of a parsed model response. Exactly one of
// Content, Options, or Action is meaningful, selected by Type.
type ChatToken struct {
	Type    TokenType `json:"type"`
	Content string    `json:"content,omitempty"`
	Options []string  `json:"options,omitempty"`
	Action  *Action   `json:"action,omitempty"`
}

// TextToken builds a text token.
func TextToken(content string) ChatToken {
	return ChatToken{Type: TokenTypeText, Content: content}
}

// ButtonsToken builds a multiple-choice token.
func ButtonsToken(options []string) ChatToken {
	return ChatToken{Type: TokenTypeButtons, Options: options}
}

// ActionToken builds an action-card token.
func ActionToken(a Action) ChatToken {
	return ChatToken{Type: TokenTypeAction, Action: &a}
}

// ParsedMessage is the ordered token sequence derived from one raw model
// response, plus the original text. It is a value object: re-parsing the same
// text yields structurally equal tokens except for Action.ID, which is
// freshly generated per parse.
type ParsedMessage struct {
	Tokens     []ChatToken `json:"tokens"`
	RawContent string      `json:"raw_content"`
}

// ActionCategory labels the life area an action card belongs to.
type ActionCategory string

const (
	CategoryAction     ActionCategory = "action"
	CategoryMindset    ActionCategory = "mindset"
	CategoryHealth     ActionCategory = "health"
	CategoryCareer     ActionCategory = "career"
	CategoryConnection ActionCategory = "connection"
	CategoryGrowth     ActionCategory = "growth"
)

// Defaults applied to action payloads that omit fields. The wire grammar
// leaves every field optional, so the parser fills these in.
const (
	DefaultActionTitle    = "Take Action"
	DefaultActionDuration = 5
	DefaultActionCategory = CategoryAction
)

// Action is an actionable task card produced either inline in a dialogue turn
// or standalone by the action generator. It has no lifecycle of its own; the
// consumer assigns durable identity if it stores one.
type Action struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	DurationMinutes int            `json:"duration"`
	Category        ActionCategory `json:"category"`
	LimitingBelief  string         `json:"limiting_belief"`
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

// ConversationTurn is a single prior exchange fed to the prompt composer.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnResult is the outbound contract of one dialogue turn: the raw provider
// text, its parsed token form, and the state the caller must carry into the
// next turn.
type TurnResult struct {
	Response       string        `json:"response"`
	ParsedResponse ParsedMessage `json:"parsed_response"`
	NewState       DialogueState `json:"new_state"`
}

// Message is a persisted conversation message: the raw content plus the
// tokens derived from it, as the rendering collaborator stores them.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           Role        `json:"role"`
	Content        string      `json:"content"`
	Tokens         []ChatToken `json:"tokens,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Conversation is one coaching dialogue and its protocol state. ToneTags
// holds the client's normalized reply-style preferences; empty means no
// preference.
type Conversation struct {
	ID          string        `json:"id"`
	UserContext string        `json:"user_context,omitempty"`
	ToneTags    []string      `json:"tone_tags,omitempty"`
	State       DialogueState `json:"state"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for an inbound user message
	MaxMessageLength = 4096
	// MaxUserContextLength defines the maximum allowed length for the long-lived user context string
	MaxUserContextLength = 8192
	// MaxToneTags bounds the reply-style tag list a request may carry
	MaxToneTags = 16
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage        = errors.New("message cannot be empty")
	ErrMessageTooLong      = errors.New("message exceeds maximum length")
	ErrUserContextTooLong  = errors.New("user context exceeds maximum length")
	ErrTooManyToneTags     = errors.New("too many tone tags")
	ErrEmptyLimitingBelief = errors.New("limiting_belief is required")
)

// IsValidActionCategory checks if the given category is one of the known labels.
func IsValidActionCategory(c ActionCategory) bool {
	switch c {
	case CategoryAction, CategoryMindset, CategoryHealth, CategoryCareer, CategoryConnection, CategoryGrowth:
		return true
	default:
		return false
	}
}
