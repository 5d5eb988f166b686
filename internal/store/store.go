// Package store provides storage backends for Reframe.
//
// It persists conversations (with their dialogue state) and the messages
// exchanged in them, backed by SQLite, PostgreSQL, or memory.
package store

import (
	"sync"

	"github.com/reframe-app/reframe/internal/models"
)

// Store defines persistence for conversations and their messages.
// GetConversation returns (nil, nil) when the conversation does not exist.
type Store interface {
	SaveConversation(conv models.Conversation) error
	GetConversation(id string) (*models.Conversation, error)
	DeleteConversation(id string) error
	AddMessage(msg models.Message) error
	GetMessages(conversationID string) ([]models.Message, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the Postgres connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// InMemoryStore keeps conversations and messages in process memory. It is
// the default backend when no DSN is configured and the workhorse of tests.
type InMemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
	messages      map[string][]models.Message
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		conversations: make(map[string]models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

// SaveConversation stores or replaces a conversation.
func (s *InMemoryStore) SaveConversation(conv models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.ID] = conv
	return nil
}

// GetConversation retrieves a conversation by id, or (nil, nil) when absent.
func (s *InMemoryStore) GetConversation(id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	return &conv, nil
}

// DeleteConversation removes a conversation and all its messages.
func (s *InMemoryStore) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	delete(s.messages, id)
	return nil
}

// AddMessage appends a message to its conversation.
func (s *InMemoryStore) AddMessage(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

// GetMessages returns a conversation's messages in insertion order.
func (s *InMemoryStore) GetMessages(conversationID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[conversationID]
	messages := make([]models.Message, len(stored))
	copy(messages, stored)
	return messages, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
