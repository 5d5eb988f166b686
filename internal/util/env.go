// Package util provides small shared helpers for IDs and environment parsing.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable, accepting the usual
// spellings (true/1/yes/on, false/0/no/off, any case). Unset, empty, or
// unrecognized values fall back to the provided default.
func ParseBoolEnv(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("ParseBoolEnv: unrecognized boolean value, falling back", "key", key, "value", raw, "fallback", fallback)
	return fallback
}
