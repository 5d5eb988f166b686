// Package tokens parses coach responses into typed chat tokens.
//
// The model is instructed, not forced, to embed two inline forms in its
// free-text output: <BUTTONS>[...]</BUTTONS> carrying a JSON string array and
// <ACTION>{...}</ACTION> carrying a JSON object. Nothing upstream enforces
// that grammar, so this package is the only safety net against malformed
// output: a payload that fails to decode is dropped and the rest of the
// message still parses.
package tokens

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/reframe-app/reframe/internal/models"
)

var (
	buttonsPattern = regexp.MustCompile(`(?s)<BUTTONS>(.*?)</BUTTONS>`)
	actionPattern  = regexp.MustCompile(`(?s)<ACTION>(.*?)</ACTION>`)
)

type matchKind int

const (
	kindButtons matchKind = iota
	kindAction
)

// tokenMatch is one recognized delimiter span and its captured payload.
type tokenMatch struct {
	start   int
	end     int
	kind    matchKind
	payload string
}

// Parse turns one raw model response into an ordered token sequence.
//
// Both token forms are scanned independently over the full text and the
// match lists merged by start offset. Text between matches is emitted as
// trimmed text tokens; empty gaps emit nothing. A match whose payload fails
// to decode is dropped, but its span still separates the surrounding text
// tokens. With no matches at all the result is exactly one text token
// holding the trimmed input, even when that is empty.
func Parse(text string) models.ParsedMessage {
	matches := collectMatches(text)
	if len(matches) == 0 {
		return models.ParsedMessage{
			Tokens:     []models.ChatToken{models.TextToken(strings.TrimSpace(text))},
			RawContent: text,
		}
	}

	tokens := make([]models.ChatToken, 0, 2*len(matches)+1)
	cursor := 0
	for _, m := range matches {
		if m.start > cursor {
			if segment := strings.TrimSpace(text[cursor:m.start]); segment != "" {
				tokens = append(tokens, models.TextToken(segment))
			}
		}
		if token, ok := decodeMatch(m); ok {
			tokens = append(tokens, token)
		}
		if m.end > cursor {
			cursor = m.end
		}
	}
	if cursor < len(text) {
		if segment := strings.TrimSpace(text[cursor:]); segment != "" {
			tokens = append(tokens, models.TextToken(segment))
		}
	}

	return models.ParsedMessage{Tokens: tokens, RawContent: text}
}

// collectMatches scans for both token forms and merges the results sorted by
// start offset. The sort is stable and BUTTONS matches are collected first,
// so a BUTTONS match wins a same-offset tie against an ACTION match; the
// grammar itself does not disambiguate that case.
func collectMatches(text string) []tokenMatch {
	var matches []tokenMatch
	for _, loc := range buttonsPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, tokenMatch{
			start:   loc[0],
			end:     loc[1],
			kind:    kindButtons,
			payload: text[loc[2]:loc[3]],
		})
	}
	for _, loc := range actionPattern.FindAllStringSubmatchIndex(text, -1) {
		matches = append(matches, tokenMatch{
			start:   loc[0],
			end:     loc[1],
			kind:    kindAction,
			payload: text[loc[2]:loc[3]],
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].start < matches[j].start
	})
	return matches
}

// decodeMatch turns a raw match into a structured token. Malformed payloads
// are logged and reported as not-ok; the caller drops them.
func decodeMatch(m tokenMatch) (models.ChatToken, bool) {
	switch m.kind {
	case kindButtons:
		options, err := DecodeOptions(m.payload)
		if err != nil {
			slog.Warn("Tokens.Parse: dropping malformed BUTTONS payload", "error", err, "payload", m.payload)
			return models.ChatToken{}, false
		}
		return models.ButtonsToken(options), true
	case kindAction:
		action, err := DecodeAction(m.payload)
		if err != nil {
			slog.Warn("Tokens.Parse: dropping malformed ACTION payload", "error", err, "payload", m.payload)
			return models.ChatToken{}, false
		}
		return models.ActionToken(action), true
	default:
		return models.ChatToken{}, false
	}
}

// DecodeOptions parses the JSON string array carried by a BUTTONS payload.
func DecodeOptions(payload string) ([]string, error) {
	var options []string
	if err := sonic.UnmarshalString(payload, &options); err != nil {
		return nil, fmt.Errorf("failed to decode options payload: %w", err)
	}
	return options, nil
}

// actionPayload mirrors the wire fields of an ACTION payload. Every field is
// optional; an id supplied by the model is never read.
type actionPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Duration       int    `json:"duration"`
	Category       string `json:"category"`
	LimitingBelief string `json:"limitingBelief"`
}

// DecodeAction parses the JSON object carried by an ACTION payload into an
// Action, filling absent or empty fields with the documented defaults and
// assigning a freshly generated id. Re-decoding identical input therefore
// yields equal actions except for the id.
func DecodeAction(payload string) (models.Action, error) {
	var raw actionPayload
	if err := sonic.UnmarshalString(payload, &raw); err != nil {
		return models.Action{}, fmt.Errorf("failed to decode action payload: %w", err)
	}

	action := models.Action{
		ID:              uuid.NewString(),
		Title:           raw.Title,
		Description:     raw.Description,
		DurationMinutes: raw.Duration,
		Category:        models.ActionCategory(raw.Category),
		LimitingBelief:  raw.LimitingBelief,
	}
	if action.Title == "" {
		action.Title = models.DefaultActionTitle
	}
	if action.DurationMinutes <= 0 {
		action.DurationMinutes = models.DefaultActionDuration
	}
	if action.Category == "" {
		action.Category = models.DefaultActionCategory
	}
	return action, nil
}
