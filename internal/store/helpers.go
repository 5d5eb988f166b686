package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reframe-app/reframe/internal/models"
)

// DetectDSNType reports which driver a DSN belongs to: "postgres" for
// URL-style or key=value Postgres connection strings, "sqlite3" for
// everything else (plain file paths and file: URIs).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite3"
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalToneTags encodes tone tags for the nullable tone_tags column.
// Empty tags encode as the empty string so nilIfEmpty stores NULL.
func marshalToneTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tone tags: %w", err)
	}
	return string(data), nil
}

// unmarshalToneTags decodes the tone_tags column. A row whose tags fail to
// decode loses the tags rather than failing the whole read.
func unmarshalToneTags(raw sql.NullString, conversationID string) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err != nil {
		slog.Error("store.unmarshalToneTags: failed to decode tone tags", "error", err, "conversationID", conversationID)
		return nil
	}
	return tags
}

// scanMessages drains message rows (sqlite and postgres share the column
// layout). A message whose tokens column fails to decode keeps its content
// and loses the tokens rather than failing the whole read.
func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var m models.Message
		var tokensJSON sql.NullString
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &tokensJSON, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if tokensJSON.Valid && tokensJSON.String != "" {
			if err := json.Unmarshal([]byte(tokensJSON.String), &m.Tokens); err != nil {
				slog.Error("store.scanMessages: failed to decode message tokens", "error", err, "messageID", m.ID)
				m.Tokens = nil
			}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return messages, nil
}
