// Package store provides storage backends for Reframe.
//
// This file implements an SQLite-backed store for conversations and messages.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/reframe-app/reframe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	slog.Debug("SQLite database directory verified/created", "dir", dir)

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	slog.Debug("SQLite database opened")

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	slog.Debug("SQLite ping successful")

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveConversation stores or updates a conversation.
func (s *SQLiteStore) SaveConversation(c models.Conversation) error {
	query := `
		INSERT OR REPLACE INTO conversations (id, user_context, tone_tags, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	stateJSON, err := json.Marshal(c.State)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation JSON marshal failed", "error", err, "conversationID", c.ID)
		return err
	}
	toneJSON, err := marshalToneTags(c.ToneTags)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation tone marshal failed", "error", err, "conversationID", c.ID)
		return err
	}

	_, err = s.db.Exec(query, c.ID, c.UserContext, nilIfEmpty(toneJSON), string(stateJSON), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveConversation failed", "error", err, "conversationID", c.ID)
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	slog.Debug("SQLiteStore SaveConversation succeeded", "conversationID", c.ID, "step", c.State.Step)
	return nil
}

// GetConversation retrieves a conversation by ID. Returns nil when absent.
func (s *SQLiteStore) GetConversation(id string) (*models.Conversation, error) {
	query := `SELECT id, user_context, tone_tags, state, created_at, updated_at FROM conversations WHERE id = ?`

	var c models.Conversation
	var toneJSON sql.NullString
	var stateJSON string

	err := s.db.QueryRow(query, id).Scan(&c.ID, &c.UserContext, &toneJSON, &stateJSON, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetConversation not found", "conversationID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversation failed", "error", err, "conversationID", id)
		return nil, err
	}

	c.ToneTags = unmarshalToneTags(toneJSON, id)
	if stateJSON != "" {
		if err := json.Unmarshal([]byte(stateJSON), &c.State); err != nil {
			slog.Error("SQLiteStore GetConversation JSON unmarshal failed", "error", err, "conversationID", id)
			// Continue with a fresh state rather than failing
			c.State = models.NewDialogueState()
		}
	}

	slog.Debug("SQLiteStore GetConversation found", "conversationID", id, "step", c.State.Step)
	return &c, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *SQLiteStore) DeleteConversation(id string) error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		slog.Error("SQLiteStore DeleteConversation messages failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to delete messages for %s: %w", id, err)
	}
	if _, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		slog.Error("SQLiteStore DeleteConversation failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	slog.Debug("SQLiteStore DeleteConversation succeeded", "conversationID", id)
	return nil
}

// AddMessage appends a message to a conversation's history.
func (s *SQLiteStore) AddMessage(m models.Message) error {
	// Convert tokens to a JSON string for the nullable column
	var tokensJSON string
	if len(m.Tokens) > 0 {
		jsonBytes, err := json.Marshal(m.Tokens)
		if err != nil {
			slog.Error("SQLiteStore AddMessage token marshal failed", "error", err, "messageID", m.ID)
			return err
		}
		tokensJSON = string(jsonBytes)
	}

	query := `INSERT INTO messages (id, conversation_id, role, content, tokens, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, m.ID, m.ConversationID, m.Role, m.Content, nilIfEmpty(tokensJSON), m.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "messageID", m.ID, "conversationID", m.ConversationID)
		return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
	}
	slog.Debug("SQLiteStore AddMessage succeeded", "messageID", m.ID, "role", m.Role)
	return nil
}

// GetMessages retrieves all messages for a conversation in chronological order.
func (s *SQLiteStore) GetMessages(conversationID string) ([]models.Message, error) {
	query := `SELECT id, conversation_id, role, content, tokens, created_at
			  FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`

	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		slog.Error("SQLiteStore GetMessages query failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		slog.Error("SQLiteStore GetMessages scan failed", "error", err, "conversationID", conversationID)
		return nil, err
	}
	slog.Debug("SQLiteStore GetMessages succeeded", "conversationID", conversationID, "count", len(messages))
	return messages, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	} else {
		slog.Debug("SQLite database connection closed successfully")
	}
	return err
}
