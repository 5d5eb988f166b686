// Package api provides conversation endpoints for Reframe.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/reframe-app/reframe/internal/models"
	"github.com/reframe-app/reframe/internal/tone"
	"github.com/reframe-app/reframe/internal/util"
)

// conversationsHandler routes /conversations/{id} and its subresources.
func (s *Server) conversationsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("conversationsHandler invoked", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/conversations")

	// Remove leading slash if present
	path = strings.TrimPrefix(path, "/")

	// Split path into segments
	segments := strings.Split(path, "/")

	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Missing conversation ID"))
		return
	}

	conversationID := segments[0]
	r = r.WithContext(context.WithValue(r.Context(), ContextKeyConversationID, conversationID))

	if len(segments) == 1 {
		// /conversations/{id}
		switch r.Method {
		case http.MethodGet:
			s.getConversationHandler(w, r)
		default:
			w.Header().Set("Allow", http.MethodGet)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
		}
		return
	}

	if len(segments) == 2 {
		// /conversations/{id}/{turn|reset}
		switch segments[1] {
		case "turn":
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
				return
			}
			s.turnHandler(w, r)
		case "reset":
			if r.Method != http.MethodPost {
				w.Header().Set("Allow", http.MethodPost)
				writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
				return
			}
			s.resetConversationHandler(w, r)
		default:
			writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown conversation endpoint"))
		}
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown conversation endpoint"))
}

// turnHandler handles POST /conversations/{id}/turn. It loads or starts the
// conversation, records the user message, runs one dialogue turn, and
// persists the reply and the advanced state.
func (s *Server) turnHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	conversationID := r.Context().Value(ContextKeyConversationID).(string)
	slog.Debug("turnHandler invoked", "conversationID", conversationID)

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("turnHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		slog.Warn("turnHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	// Load the conversation, or start a fresh one under the caller's ID
	conv, err := s.st.GetConversation(conversationID)
	if err != nil {
		slog.Error("turnHandler load conversation failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load conversation"))
		return
	}
	now := time.Now().UTC()
	if conv == nil {
		conv = &models.Conversation{
			ID:        conversationID,
			State:     models.NewDialogueState(),
			CreatedAt: now,
		}
		slog.Debug("turnHandler starting new conversation", "conversationID", conversationID)
	}
	if req.UserContext != "" {
		conv.UserContext = req.UserContext
	}
	if len(req.ToneTags) > 0 {
		conv.ToneTags = tone.Normalize(req.ToneTags)
	}

	// Record the user message first so it is part of the composed history
	userMsg := models.Message{
		ID:             util.GenerateMessageID(),
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        req.Message,
		CreatedAt:      now,
	}
	if err := s.st.AddMessage(userMsg); err != nil {
		slog.Error("turnHandler store user message failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to store message"))
		return
	}

	stored, err := s.st.GetMessages(conversationID)
	if err != nil {
		slog.Error("turnHandler load history failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load history"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), DefaultRequestTimeout)
	defer cancel()
	result := s.engine.Turn(ctx, conv.State, toConversationTurns(stored), conv.UserContext, conv.ToneTags)

	coachMsg := models.Message{
		ID:             util.GenerateMessageID(),
		ConversationID: conversationID,
		Role:           models.RoleCoach,
		Content:        result.Response,
		Tokens:         result.ParsedResponse.Tokens,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.st.AddMessage(coachMsg); err != nil {
		slog.Error("turnHandler store coach message failed", "error", err, "conversationID", conversationID)
		// Note: We don't fail the turn if storing the reply fails, but we log it
	}

	conv.State = result.NewState
	conv.UpdatedAt = time.Now().UTC()
	if err := s.st.SaveConversation(*conv); err != nil {
		slog.Error("turnHandler save conversation failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save conversation"))
		return
	}

	slog.Info("turnHandler completed", "conversationID", conversationID, "step", result.NewState.Step)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// resetConversationHandler handles POST /conversations/{id}/reset. It discards
// the conversation's messages and state and starts over under the same ID. An
// empty body resets in place; a body with user_context or tone_tags replaces
// the carried values.
func (s *Server) resetConversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	conversationID := r.Context().Value(ContextKeyConversationID).(string)
	slog.Debug("resetConversationHandler invoked", "conversationID", conversationID)

	var req models.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Warn("resetConversationHandler invalid JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		slog.Warn("resetConversationHandler validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	// Carry the existing context and tone unless the reset provides new ones
	existing, err := s.st.GetConversation(conversationID)
	if err != nil {
		slog.Error("resetConversationHandler load failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load conversation"))
		return
	}
	userContext := req.UserContext
	if userContext == "" && existing != nil {
		userContext = existing.UserContext
	}
	toneTags := tone.Normalize(req.ToneTags)
	if toneTags == nil && existing != nil {
		toneTags = existing.ToneTags
	}

	if err := s.st.DeleteConversation(conversationID); err != nil {
		slog.Error("resetConversationHandler delete failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to reset conversation"))
		return
	}

	now := time.Now().UTC()
	conv := models.Conversation{
		ID:          conversationID,
		UserContext: userContext,
		ToneTags:    toneTags,
		State:       models.NewDialogueState(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.st.SaveConversation(conv); err != nil {
		slog.Error("resetConversationHandler save failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save conversation"))
		return
	}

	slog.Info("Conversation reset successfully", "conversationID", conversationID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation reset successfully", conv))
}

// getConversationHandler handles GET /conversations/{id}
func (s *Server) getConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := r.Context().Value(ContextKeyConversationID).(string)
	slog.Debug("getConversationHandler invoked", "conversationID", conversationID)

	conv, err := s.st.GetConversation(conversationID)
	if err != nil {
		slog.Error("getConversationHandler failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get conversation"))
		return
	}

	if conv == nil {
		slog.Debug("getConversationHandler not found", "conversationID", conversationID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
		return
	}

	messages, err := s.st.GetMessages(conversationID)
	if err != nil {
		slog.Error("getConversationHandler messages failed", "error", err, "conversationID", conversationID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to get messages"))
		return
	}

	detail := map[string]interface{}{
		"conversation": conv,
		"messages":     messages,
	}
	slog.Debug("getConversationHandler succeeded", "conversationID", conversationID, "messages", len(messages))
	writeJSONResponse(w, http.StatusOK, models.Success(detail))
}

// toConversationTurns converts stored messages to the composer's history shape.
func toConversationTurns(messages []models.Message) []models.ConversationTurn {
	turns := make([]models.ConversationTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, models.ConversationTurn{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.CreatedAt,
		})
	}
	return turns
}
