// Package tone maintains the whitelist of reply-style tags a client may set
// on a conversation, normalization of incoming tags, and construction of the
// style-guide block injected into coaching prompts.
package tone

import "strings"

// AllTags is the fixed set of reply-style tags a client may set.
var AllTags = map[string]bool{
	// Length
	"concise":  true,
	"detailed": true,
	// Register
	"casual": true,
	"formal": true,
	// Stance
	"gentle": true,
	"direct": true,
	// Formatting
	"no_emojis":      true,
	"emojis_ok":      true,
	"plain_language": true,
}

// exclusivePairs lists tags where at most one may be active. When a request
// carries both, the one that appears first wins.
var exclusivePairs = [][2]string{
	{"concise", "detailed"},
	{"casual", "formal"},
	{"gentle", "direct"},
	{"no_emojis", "emojis_ok"},
}

// Normalize lowercases and trims the given tags, drops unknown tags and
// duplicates, and resolves exclusive pairs first-wins. Returns nil when
// nothing survives.
func Normalize(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if !AllTags[tag] || seen[tag] {
			continue
		}
		if conflicts(tag, seen) {
			continue
		}
		out = append(out, tag)
		seen[tag] = true
	}
	return out
}

// conflicts reports whether tag's exclusive partner has already been accepted.
func conflicts(tag string, seen map[string]bool) bool {
	for _, pair := range exclusivePairs {
		if pair[0] == tag && seen[pair[1]] {
			return true
		}
		if pair[1] == tag && seen[pair[0]] {
			return true
		}
	}
	return false
}

// BuildStyleGuide renders the active tags as an instruction block for the
// coaching prompt. Tags are normalized first so stale or unknown stored
// values never reach the prompt. Returns an empty string when no tags are
// active.
func BuildStyleGuide(tags []string) string {
	active := Normalize(tags)
	if len(active) == 0 {
		return ""
	}

	set := make(map[string]bool, len(active))
	for _, t := range active {
		set[t] = true
	}

	lines := []string{"Reply style preferences:"}
	if set["concise"] {
		lines = append(lines, "- Keep replies short: a few sentences, no filler.")
	}
	if set["detailed"] {
		lines = append(lines, "- Give fuller replies and explain your reasoning, but stay on topic.")
	}
	if set["casual"] {
		lines = append(lines, "- Use casual, friendly language.")
	}
	if set["formal"] {
		lines = append(lines, "- Use a formal, professional register.")
	}
	if set["gentle"] {
		lines = append(lines, "- Be gentle: patient, encouraging phrasing.")
	}
	if set["direct"] {
		lines = append(lines, "- Be direct: name the pattern you see without hedging.")
	}
	if set["no_emojis"] {
		lines = append(lines, "- Do not use emojis.")
	}
	if set["emojis_ok"] {
		lines = append(lines, "- Emojis are welcome where they fit.")
	}
	if set["plain_language"] {
		lines = append(lines, "- Use plain language: no jargon, no clinical terms.")
	}
	lines = append(lines, "- Never mirror hostility or self-contempt back at the user.")

	return strings.Join(lines, "\n")
}
