// Package api provides HTTP handlers and the main API server logic for Reframe.
//
// It exposes RESTful endpoints for running dialogue turns, resetting
// conversations, and generating standalone action cards and quick-reply
// suggestions. The API integrates with the dialogue, genai, prompts, and
// store modules.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/reframe-app/reframe/internal/dialogue"
	"github.com/reframe-app/reframe/internal/genai"
	"github.com/reframe-app/reframe/internal/prompts"
	"github.com/reframe-app/reframe/internal/store"
)

// Constants for API server configuration
const (
	// DefaultAddr is the default listen address for the API server
	DefaultAddr = ":8080"
	// DefaultRequestTimeout bounds one generation request, including the provider call
	DefaultRequestTimeout = 60 * time.Second
)

// contextKey is a private type for request context values set by the router.
type contextKey string

// ContextKeyConversationID carries the conversation ID extracted from the URL path.
const ContextKeyConversationID contextKey = "conversationID"

// Opts holds configuration for the API server.
type Opts struct {
	Addr string
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address for the API server.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// Server bundles the modules behind the HTTP surface.
type Server struct {
	addr       string
	st         store.Store
	engine     *dialogue.Engine
	actionGen  *dialogue.ActionGenerator
	suggestGen *dialogue.SuggestionGenerator
}

// NewServer assembles a server from already-constructed modules.
func NewServer(st store.Store, engine *dialogue.Engine, actionGen *dialogue.ActionGenerator, suggestGen *dialogue.SuggestionGenerator, opts ...Option) *Server {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		addr:       addr,
		st:         st,
		engine:     engine,
		actionGen:  actionGen,
		suggestGen: suggestGen,
	}
}

// Handler returns the route table for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/conversations/", s.conversationsHandler)
	mux.HandleFunc("/actions/generate", s.generateActionHandler)
	mux.HandleFunc("/suggestions", s.suggestionsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run constructs every module from its option slice and serves HTTP until the
// listener fails. It is the single bootstrap entry point used by cmd/reframe.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, promptOpts []prompts.Option, apiOpts []Option) error {
	// Select a store backend from the configured DSN
	var storeCfg store.Opts
	for _, opt := range storeOpts {
		opt(&storeCfg)
	}
	var st store.Store
	switch {
	case storeCfg.DSN == "":
		slog.Info("API Run: no database DSN configured, using in-memory store")
		st = store.NewInMemoryStore()
	case store.DetectDSNType(storeCfg.DSN) == "postgres":
		ps, err := store.NewPostgresStore(storeOpts...)
		if err != nil {
			slog.Error("API Run: failed to initialize Postgres store", "error", err)
			return fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		st = ps
	default:
		ss, err := store.NewSQLiteStore(storeOpts...)
		if err != nil {
			slog.Error("API Run: failed to initialize SQLite store", "error", err)
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		st = ss
	}
	defer st.Close()

	// The generation client is optional: without one, every turn serves the
	// canned fallback responses.
	var gaClient genai.ClientInterface
	if client, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("API Run: GenAI client not available, serving fallback responses", "error", err)
	} else {
		gaClient = client
	}

	composer := prompts.NewComposer(promptOpts...)
	if err := composer.LoadPersona(); err != nil {
		slog.Error("API Run: failed to load persona", "error", err)
		return fmt.Errorf("failed to load persona: %w", err)
	}

	engine := dialogue.NewEngine(gaClient, composer)
	actionGen := dialogue.NewActionGenerator(gaClient)
	suggestGen := dialogue.NewSuggestionGenerator(gaClient)

	srv := NewServer(st, engine, actionGen, suggestGen, apiOpts...)
	slog.Info("Reframe API running", "addr", srv.addr)
	if err := http.ListenAndServe(srv.addr, srv.Handler()); err != nil {
		slog.Error("API server terminated", "error", err)
		return err
	}
	return nil
}
