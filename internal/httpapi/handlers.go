package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/chongdashu/crypto-scout/internal/agent"
	"github.com/chongdashu/crypto-scout/internal/session"
	"github.com/chongdashu/crypto-scout/pkg/log"
)

// AgentResponse is the envelope every /run call returns, success or not
type AgentResponse struct {
	Message   string                 `json:"message"`
	Status    string                 `json:"status"`
	Data      map[string]interface{} `json:"data"`
	SessionID string                 `json:"session_id,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req agent.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	// An unknown or absent session id gets a fresh session so the
	// transcript has somewhere to live
	sessionID := req.SessionID
	if _, ok := s.sessions.Get(sessionID); !ok {
		sessionID = s.sessions.Create(s.meta.Name, "", sessionID).ID
	}
	_ = s.sessions.Append(sessionID, session.ChatMessage{Role: session.RoleUser, Content: req.Message})

	result, transcript := s.answer(r.Context(), req.Message)

	if transcript != nil {
		s.recordToolExchanges(sessionID, transcript)
	}
	_ = s.sessions.Append(sessionID, session.ChatMessage{Role: session.RoleAssistant, Content: result.Message})

	data := result.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, AgentResponse{
		Message:   result.Message,
		Status:    result.Status,
		Data:      data,
		SessionID: sessionID,
	})
}

// answer shields the transport from anything the pipeline might panic on; a
// single bad request must never take the service down
func (s *Server) answer(ctx context.Context, message string) (result agent.Result, transcript *agent.Transcript) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("request handling panicked: %v", recovered)
			result = recoverToResult(recovered)
			transcript = nil
		}
	}()
	return s.answerer.Answer(ctx, message)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.meta)
}

// handleCreateSession serves
// POST /apps/{agent}/users/{user}/sessions/{session} with an empty body
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/apps/"), "/"), "/")
	if len(parts) != 5 || parts[1] != "users" || parts[3] != "sessions" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	appName, userID, sessionID := parts[0], parts[2], parts[4]
	if appName == "" || userID == "" || sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing app, user or session id")
		return
	}

	sess := s.sessions.Create(appName, userID, sessionID)
	log.Info("created session %s for user %s", sess.ID, sess.UserID)
	writeJSON(w, http.StatusOK, sess)
}

func recoverToResult(recovered interface{}) agent.Result {
	return agent.Result{
		Message: fmt.Sprintf("Error processing request: %v", recovered),
		Status:  agent.StatusError,
		Data:    map[string]interface{}{"error_type": "panic"},
	}
}

func (s *Server) recordToolExchanges(sessionID string, transcript *agent.Transcript) {
	for _, entry := range transcript.Entries() {
		switch entry.Kind {
		case agent.EntryToolCall:
			_ = s.sessions.Append(sessionID, session.ChatMessage{
				Role:    session.RoleToolCall,
				Content: fmt.Sprintf("Tool Call: %s", entry.Tool),
			})
		case agent.EntryToolResult:
			content := ""
			if entry.Result != nil {
				content = entry.Result.Result
			}
			_ = s.sessions.Append(sessionID, session.ChatMessage{
				Role:    session.RoleToolResponse,
				Content: fmt.Sprintf("Tool Response: %s: %s", entry.Tool, content),
			})
		}
	}
}
