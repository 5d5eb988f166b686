// Package store provides storage backends for Reframe.
//
// This file implements a PostgreSQL-backed store for conversations and messages.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/reframe-app/reframe/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	slog.Debug("Postgres database opened")

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	slog.Debug("Postgres ping successful")

	// Run migrations to ensure tables exist
	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveConversation stores or updates a conversation.
func (s *PostgresStore) SaveConversation(c models.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_context, tone_tags, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			user_context = EXCLUDED.user_context,
			tone_tags = EXCLUDED.tone_tags,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at`

	stateJSON, err := json.Marshal(c.State)
	if err != nil {
		slog.Error("PostgresStore SaveConversation JSON marshal failed", "error", err, "conversationID", c.ID)
		return err
	}
	toneJSON, err := marshalToneTags(c.ToneTags)
	if err != nil {
		slog.Error("PostgresStore SaveConversation tone marshal failed", "error", err, "conversationID", c.ID)
		return err
	}

	_, err = s.db.Exec(query, c.ID, c.UserContext, nilIfEmpty(toneJSON), string(stateJSON), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveConversation failed", "error", err, "conversationID", c.ID)
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	slog.Debug("PostgresStore SaveConversation succeeded", "conversationID", c.ID, "step", c.State.Step)
	return nil
}

// GetConversation retrieves a conversation by ID. Returns nil when absent.
func (s *PostgresStore) GetConversation(id string) (*models.Conversation, error) {
	query := `SELECT id, user_context, tone_tags, state, created_at, updated_at FROM conversations WHERE id = $1`

	var c models.Conversation
	var toneJSON sql.NullString
	var stateJSON string

	err := s.db.QueryRow(query, id).Scan(&c.ID, &c.UserContext, &toneJSON, &stateJSON, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetConversation not found", "conversationID", id)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversation failed", "error", err, "conversationID", id)
		return nil, err
	}

	c.ToneTags = unmarshalToneTags(toneJSON, id)
	if stateJSON != "" {
		if err := json.Unmarshal([]byte(stateJSON), &c.State); err != nil {
			slog.Error("PostgresStore GetConversation JSON unmarshal failed", "error", err, "conversationID", id)
			// Continue with a fresh state rather than failing
			c.State = models.NewDialogueState()
		}
	}

	slog.Debug("PostgresStore GetConversation found", "conversationID", id, "step", c.State.Step)
	return &c, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *PostgresStore) DeleteConversation(id string) error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
		slog.Error("PostgresStore DeleteConversation messages failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to delete messages for %s: %w", id, err)
	}
	if _, err := s.db.Exec(`DELETE FROM conversations WHERE id = $1`, id); err != nil {
		slog.Error("PostgresStore DeleteConversation failed", "error", err, "conversationID", id)
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	slog.Debug("PostgresStore DeleteConversation succeeded", "conversationID", id)
	return nil
}

// AddMessage appends a message to a conversation's history.
func (s *PostgresStore) AddMessage(m models.Message) error {
	// Convert tokens to a JSON string for the nullable column
	var tokensJSON string
	if len(m.Tokens) > 0 {
		jsonBytes, err := json.Marshal(m.Tokens)
		if err != nil {
			slog.Error("PostgresStore AddMessage token marshal failed", "error", err, "messageID", m.ID)
			return err
		}
		tokensJSON = string(jsonBytes)
	}

	query := `INSERT INTO messages (id, conversation_id, role, content, tokens, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(query, m.ID, m.ConversationID, m.Role, m.Content, nilIfEmpty(tokensJSON), m.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore AddMessage failed", "error", err, "messageID", m.ID, "conversationID", m.ConversationID)
		return fmt.Errorf("failed to insert message %s: %w", m.ID, err)
	}
	slog.Debug("PostgresStore AddMessage succeeded", "messageID", m.ID, "role", m.Role)
	return nil
}

// GetMessages retrieves all messages for a conversation in chronological order.
func (s *PostgresStore) GetMessages(conversationID string) ([]models.Message, error) {
	query := `SELECT id, conversation_id, role, content, tokens, created_at
			  FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		slog.Error("PostgresStore GetMessages query failed", "error", err, "conversationID", conversationID)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		slog.Error("PostgresStore GetMessages scan failed", "error", err, "conversationID", conversationID)
		return nil, err
	}
	slog.Debug("PostgresStore GetMessages succeeded", "conversationID", conversationID, "count", len(messages))
	return messages, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	} else {
		slog.Debug("Postgres database connection closed successfully")
	}
	return err
}
