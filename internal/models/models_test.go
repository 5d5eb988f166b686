package models

import (
	"errors"
	"testing"
)

func TestTurnRequestValidation(t *testing.T) {
	longMessage := make([]byte, MaxMessageLength+1)
	for i := range longMessage {
		longMessage[i] = 'a'
	}

	tests := []struct {
		name    string
		request TurnRequest
		wantErr error
	}{
		{
			name:    "valid request",
			request: TurnRequest{Message: "I feel stuck at work"},
			wantErr: nil,
		},
		{
			name:    "valid request with user context",
			request: TurnRequest{Message: "hello", UserContext: "prefers short answers"},
			wantErr: nil,
		},
		{
			name:    "missing message",
			request: TurnRequest{UserContext: "ctx"},
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "message too long",
			request: TurnRequest{Message: string(longMessage)},
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "valid request with tone tags",
			request: TurnRequest{Message: "hello", ToneTags: []string{"concise", "gentle"}},
			wantErr: nil,
		},
		{
			name:    "too many tone tags",
			request: TurnRequest{Message: "hello", ToneTags: make([]string, MaxToneTags+1)},
			wantErr: ErrTooManyToneTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResetRequestValidation(t *testing.T) {
	if err := (&ResetRequest{}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error on empty reset: %v", err)
	}
	if err := (&ResetRequest{ToneTags: make([]string, MaxToneTags+1)}).Validate(); !errors.Is(err, ErrTooManyToneTags) {
		t.Errorf("Validate() error = %v; want %v", err, ErrTooManyToneTags)
	}
}

func TestActionGenerateRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		request ActionGenerateRequest
		wantErr bool
	}{
		{
			name:    "valid request",
			request: ActionGenerateRequest{LimitingBelief: "I'm not good enough"},
			wantErr: false,
		},
		{
			name: "valid request with category",
			request: ActionGenerateRequest{
				LimitingBelief: "I'm not good enough",
				Category:       CategoryMindset,
			},
			wantErr: false,
		},
		{
			name:    "missing limiting belief",
			request: ActionGenerateRequest{Context: "ctx"},
			wantErr: true,
		},
		{
			name: "invalid category",
			request: ActionGenerateRequest{
				LimitingBelief: "I'm not good enough",
				Category:       ActionCategory("sports"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestSuggestionRequestValidation(t *testing.T) {
	if err := (&SuggestionRequest{Message: "I tried but failed"}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (&SuggestionRequest{}).Validate(); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Validate() error = %v; want %v", err, ErrEmptyMessage)
	}
}

func TestIsValidActionCategory(t *testing.T) {
	tests := []struct {
		category ActionCategory
		expected bool
	}{
		{CategoryAction, true},
		{CategoryMindset, true},
		{CategoryHealth, true},
		{CategoryCareer, true},
		{CategoryConnection, true},
		{CategoryGrowth, true},
		{ActionCategory("invalid"), false},
		{ActionCategory(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			result := IsValidActionCategory(tt.category)
			if result != tt.expected {
				t.Errorf("IsValidActionCategory(%v) = %v; want %v", tt.category, result, tt.expected)
			}
		})
	}
}

func TestStepString(t *testing.T) {
	tests := []struct {
		step     Step
		expected string
	}{
		{StepValidate, "validate"},
		{StepInquire, "inquire"},
		{StepReframe, "reframe"},
		{StepAct, "act"},
		{Step(0), "unknown"},
		{Step(5), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.step.String(); got != tt.expected {
			t.Errorf("Step(%d).String() = %q; want %q", int(tt.step), got, tt.expected)
		}
	}
}

func TestNewDialogueState(t *testing.T) {
	state := NewDialogueState()
	if state.Step != StepValidate {
		t.Errorf("NewDialogueState().Step = %v; want %v", state.Step, StepValidate)
	}
	if state.ValidationComplete || state.ReframeGiven {
		t.Error("NewDialogueState() should start with no completed phases")
	}
	if state.InquiryCount != 0 {
		t.Errorf("NewDialogueState().InquiryCount = %d; want 0", state.InquiryCount)
	}
	if state.CoreBelief != "" {
		t.Errorf("NewDialogueState().CoreBelief = %q; want empty", state.CoreBelief)
	}
}

func TestTokenConstructors(t *testing.T) {
	text := TextToken("hello")
	if text.Type != TokenTypeText || text.Content != "hello" {
		t.Errorf("TextToken() = %+v; want text token with content %q", text, "hello")
	}

	buttons := ButtonsToken([]string{"Yes", "No"})
	if buttons.Type != TokenTypeButtons || len(buttons.Options) != 2 {
		t.Errorf("ButtonsToken() = %+v; want buttons token with 2 options", buttons)
	}

	action := ActionToken(Action{ID: "act_1", Title: "Breathe"})
	if action.Type != TokenTypeAction || action.Action == nil || action.Action.Title != "Breathe" {
		t.Errorf("ActionToken() = %+v; want action token with title %q", action, "Breathe")
	}
}

func TestAPIResponseEnvelopes(t *testing.T) {
	okResp := Success("payload")
	if okResp.Status != string(APIStatusOK) || okResp.Result != "payload" {
		t.Errorf("Success() = %+v; want ok status with result", okResp)
	}
	if okResp.Message != "" {
		t.Errorf("Success() message = %q; want empty", okResp.Message)
	}

	noted := SuccessWithMessage("done", map[string]string{"k": "v"})
	if noted.Status != string(APIStatusOK) || noted.Message != "done" {
		t.Errorf("SuccessWithMessage() = %+v; want ok status with message", noted)
	}
	if noted.Result == nil {
		t.Error("SuccessWithMessage() result should not be nil")
	}

	errResp := Error("boom")
	if errResp.Status != string(APIStatusError) || errResp.Message != "boom" {
		t.Errorf("Error() = %+v; want error status with message %q", errResp, "boom")
	}
	if errResp.Result != nil {
		t.Errorf("Error() result = %v; want nil", errResp.Result)
	}
}
