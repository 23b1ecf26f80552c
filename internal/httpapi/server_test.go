package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chongdashu/crypto-scout/internal/agent"
	"github.com/chongdashu/crypto-scout/internal/session"
	"github.com/chongdashu/crypto-scout/internal/tools"
)

type stubAnswerer struct {
	result     agent.Result
	transcript *agent.Transcript
	panicWith  interface{}
}

func (s *stubAnswerer) Answer(ctx context.Context, message string) (agent.Result, *agent.Transcript) {
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.result, s.transcript
}

func newTestServer(t *testing.T, answerer Answerer) (*Server, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Hour)
	server := NewServer(answerer, store, AgentMetadata{
		Name:        "crypto_scout",
		Description: "Crypto research agent",
		Version:     "1.0.0",
	})
	return server, store
}

func postJSON(t *testing.T, handler http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun_Envelope(t *testing.T) {
	t.Parallel()

	stub := &stubAnswerer{
		result: agent.Result{
			Message: "Bitcoin is at $65,000.",
			Status:  agent.StatusSuccess,
			Data:    map[string]interface{}{"intent": "price", "coin_id": "bitcoin"},
		},
	}
	server, _ := newTestServer(t, stub)

	rec := postJSON(t, server.Handler(), "/run", agent.Request{Message: "bitcoin price"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bitcoin is at $65,000.", resp.Message)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "price", resp.Data["intent"])
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleRun_RecordsTranscriptInSession(t *testing.T) {
	t.Parallel()

	transcript := agent.NewTranscript("what is btc?")
	transcript.AddToolCall("search_coin_id", map[string]interface{}{"query": "btc"})
	transcript.AddToolResult("search_coin_id", map[string]interface{}{"query": "btc"}, tools.Success("bitcoin"))

	stub := &stubAnswerer{
		result:     agent.Result{Message: "It's bitcoin.", Status: agent.StatusSuccess},
		transcript: transcript,
	}
	server, store := newTestServer(t, stub)
	store.Create("crypto_scout", "u1", "s1")

	rec := postJSON(t, server.Handler(), "/run", agent.Request{Message: "what is btc?", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)

	sess, ok := store.Get("s1")
	require.True(t, ok)
	require.Len(t, sess.Messages, 4)
	assert.Equal(t, session.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "what is btc?", sess.Messages[0].Content)
	assert.Equal(t, session.RoleToolCall, sess.Messages[1].Role)
	assert.Equal(t, "Tool Call: search_coin_id", sess.Messages[1].Content)
	assert.Equal(t, session.RoleToolResponse, sess.Messages[2].Role)
	assert.Equal(t, "Tool Response: search_coin_id: bitcoin", sess.Messages[2].Content)
	assert.Equal(t, session.RoleAssistant, sess.Messages[3].Role)
	assert.Equal(t, "It's bitcoin.", sess.Messages[3].Content)
}

func TestHandleRun_UnknownSessionGetsAFreshOne(t *testing.T) {
	t.Parallel()

	stub := &stubAnswerer{result: agent.Result{Message: "ok", Status: agent.StatusSuccess}}
	server, store := newTestServer(t, stub)

	rec := postJSON(t, server.Handler(), "/run", agent.Request{Message: "hello", SessionID: "never-created"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "never-created", resp.SessionID)

	_, ok := store.Get("never-created")
	assert.True(t, ok)
}

func TestHandleRun_Validation(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubAnswerer{})

	rec := postJSON(t, server.Handler(), "/run", agent.Request{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message is required")

	req := httptest.NewRequest(http.MethodGet, "/run", nil)
	getRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, getRec.Code)

	badBody := httptest.NewRequest(http.MethodPost, "/run", bytes.NewReader([]byte("{not json")))
	badRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(badRec, badBody)
	assert.Equal(t, http.StatusBadRequest, badRec.Code)
}

func TestHandleRun_PanicBecomesErrorEnvelope(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubAnswerer{panicWith: fmt.Errorf("nil pointer somewhere")})

	rec := postJSON(t, server.Handler(), "/run", agent.Request{Message: "boom"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "Error processing request: nil pointer somewhere")
	assert.Equal(t, "panic", resp.Data["error_type"])
}

func TestHandleMetadata(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubAnswerer{})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var meta AgentMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "crypto_scout", meta.Name)
	assert.Equal(t, []string{"run"}, meta.Endpoints)
	assert.Equal(t, "1.0.0", meta.Version)

	post := httptest.NewRequest(http.MethodPost, "/.well-known/agent.json", nil)
	postRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(postRec, post)
	assert.Equal(t, http.StatusMethodNotAllowed, postRec.Code)
}

func TestHandleCreateSession(t *testing.T) {
	t.Parallel()

	server, store := newTestServer(t, &stubAnswerer{})

	rec := postJSON(t, server.Handler(), "/apps/crypto_scout/users/u1/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "crypto_scout", sess.AppName)

	stored, ok := store.Get("s1")
	require.True(t, ok)
	assert.Empty(t, stored.Messages)
}

func TestHandleCreateSession_BadPaths(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &stubAnswerer{})

	rec := postJSON(t, server.Handler(), "/apps/crypto_scout/users/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = postJSON(t, server.Handler(), "/apps/crypto_scout/sessions/s1/users/u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/apps/a/users/u/sessions/s", nil)
	getRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, getRec.Code)
}
