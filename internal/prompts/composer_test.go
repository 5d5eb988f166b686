package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reframe-app/reframe/internal/models"
)

func TestComposeIncludesPersona(t *testing.T) {
	composer := NewComposer()
	prompt := composer.Compose(models.NewDialogueState(), nil, "", nil)

	if !strings.Contains(prompt, "You are Reframe") {
		t.Error("prompt should start from the embedded persona text")
	}
	if !strings.Contains(prompt, "<BUTTONS>") || !strings.Contains(prompt, "<ACTION>") {
		t.Error("persona must describe the token grammar")
	}
}

func TestComposeStepGuidance(t *testing.T) {
	composer := NewComposer()

	tests := []struct {
		name     string
		state    models.DialogueState
		want     string
		excluded string
	}{
		{
			name:  "step 1 validates",
			state: models.DialogueState{Step: models.StepValidate},
			want:  "step 1 (Validate)",
		},
		{
			name:     "step 2 first inquiry",
			state:    models.DialogueState{Step: models.StepInquire, InquiryCount: 0},
			want:     "step 2 (Inquire)",
			excluded: "final question",
		},
		{
			name:  "step 2 final inquiry names the belief",
			state: models.DialogueState{Step: models.StepInquire, InquiryCount: 1},
			want:  `core belief "..."`,
		},
		{
			name:  "step 3 with identified belief",
			state: models.DialogueState{Step: models.StepReframe, CoreBelief: "I always fail"},
			want:  `"I always fail"`,
		},
		{
			name:     "step 3 without belief degrades to generic guidance",
			state:    models.DialogueState{Step: models.StepReframe},
			want:     "step 3 (Reframe)",
			excluded: "core belief is",
		},
		{
			name:  "step 4 requests an action token",
			state: models.DialogueState{Step: models.StepAct},
			want:  "<ACTION>",
		},
		{
			name:  "invalid step falls back to validation",
			state: models.DialogueState{Step: models.Step(9)},
			want:  "step 1 (Validate)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := composer.Compose(tt.state, nil, "", nil)
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("prompt for %+v missing %q", tt.state, tt.want)
			}
			if tt.excluded != "" && strings.Contains(prompt, tt.excluded) {
				t.Errorf("prompt for %+v unexpectedly contains %q", tt.state, tt.excluded)
			}
		})
	}
}

func TestComposeIncludesHistoryAndContext(t *testing.T) {
	composer := NewComposer()
	history := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "I feel stuck"},
		{Role: models.RoleCoach, Content: "That sounds heavy"},
	}

	prompt := composer.Compose(models.NewDialogueState(), history, "works night shifts", nil)

	if !strings.Contains(prompt, "User: I feel stuck") {
		t.Error("prompt missing user history line")
	}
	if !strings.Contains(prompt, "Coach: That sounds heavy") {
		t.Error("prompt missing coach history line")
	}
	if !strings.Contains(prompt, "About the user: works night shifts") {
		t.Error("prompt missing user context section")
	}

	bare := composer.Compose(models.NewDialogueState(), nil, "", nil)
	if strings.Contains(bare, "Conversation so far:") {
		t.Error("empty history should not emit a history section")
	}
	if strings.Contains(bare, "About the user:") {
		t.Error("empty context should not emit a context section")
	}
}

func TestComposeIncludesStyleGuide(t *testing.T) {
	composer := NewComposer()

	prompt := composer.Compose(models.NewDialogueState(), nil, "", []string{"concise", "gentle"})
	if !strings.Contains(prompt, "Reply style preferences:") {
		t.Error("prompt missing reply-style section")
	}
	if !strings.Contains(prompt, "Keep replies short") {
		t.Error("prompt missing concise style line")
	}

	// Style guide lands between step guidance and the history window.
	history := []models.ConversationTurn{{Role: models.RoleUser, Content: "hello"}}
	ordered := composer.Compose(models.NewDialogueState(), history, "", []string{"concise"})
	styleAt := strings.Index(ordered, "Reply style preferences:")
	historyAt := strings.Index(ordered, "Conversation so far:")
	if styleAt == -1 || historyAt == -1 || styleAt > historyAt {
		t.Errorf("style guide out of order: style at %d, history at %d", styleAt, historyAt)
	}

	bare := composer.Compose(models.NewDialogueState(), nil, "", nil)
	if strings.Contains(bare, "Reply style preferences:") {
		t.Error("no tags should mean no style section")
	}
}

func TestFormatHistoryWindow(t *testing.T) {
	var history []models.ConversationTurn
	for i := 0; i < HistoryWindow+2; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleCoach
		}
		history = append(history, models.ConversationTurn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	formatted := FormatHistory(history)
	lines := strings.Split(formatted, "\n")

	if len(lines) != HistoryWindow {
		t.Fatalf("FormatHistory() kept %d lines; want %d", len(lines), HistoryWindow)
	}
	// Oldest surviving turn first, both overflow turns dropped.
	if !strings.Contains(lines[0], "turn 2") {
		t.Errorf("first line = %q; want oldest surviving turn", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], fmt.Sprintf("turn %d", HistoryWindow+1)) {
		t.Errorf("last line = %q; want newest turn", lines[len(lines)-1])
	}
}

func TestLoadPersonaFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persona.txt")
	if err := os.WriteFile(path, []byte("You are a test persona.\n"), 0o644); err != nil {
		t.Fatalf("writing persona file: %v", err)
	}

	composer := NewComposer(WithPersonaFile(path))
	if err := composer.LoadPersona(); err != nil {
		t.Fatalf("LoadPersona() error: %v", err)
	}

	prompt := composer.Compose(models.NewDialogueState(), nil, "", nil)
	if !strings.Contains(prompt, "You are a test persona.") {
		t.Error("prompt should use the overriding persona file")
	}
	if strings.Contains(prompt, "You are Reframe") {
		t.Error("embedded persona should be replaced by the file override")
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	composer := NewComposer(WithPersonaFile(filepath.Join(t.TempDir(), "absent.txt")))
	if err := composer.LoadPersona(); err == nil {
		t.Error("LoadPersona() expected error for missing file")
	}
}

func TestLoadPersonaNoFileConfigured(t *testing.T) {
	composer := NewComposer()
	if err := composer.LoadPersona(); err != nil {
		t.Errorf("LoadPersona() without override should be a no-op, got %v", err)
	}
}

func TestActionPrompt(t *testing.T) {
	prompt := ActionPrompt("I'm not creative", "paints on weekends", models.CategoryGrowth)

	if !strings.Contains(prompt, `"I'm not creative"`) {
		t.Error("action prompt must carry the limiting belief verbatim")
	}
	if !strings.Contains(prompt, "paints on weekends") {
		t.Error("action prompt missing user context")
	}
	if !strings.Contains(prompt, "growth") {
		t.Error("action prompt missing life area")
	}
	if !strings.Contains(prompt, "exactly one JSON object") {
		t.Error("action prompt must request a single JSON object")
	}

	bare := ActionPrompt("belief", "", "")
	if strings.Contains(bare, "About the user:") || strings.Contains(bare, "Life area:") {
		t.Error("optional sections should be omitted when empty")
	}
}

func TestSuggestionPrompt(t *testing.T) {
	prompt := SuggestionPrompt("I don't know where to start", "new to coaching")

	if !strings.Contains(prompt, "I don't know where to start") {
		t.Error("suggestion prompt must carry the user message")
	}
	if !strings.Contains(prompt, "JSON array of three short strings") {
		t.Error("suggestion prompt must request three replies")
	}
}
