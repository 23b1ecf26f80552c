package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/chongdashu/crypto-scout/internal/agent"
	"github.com/chongdashu/crypto-scout/internal/session"
)

// Answerer produces the reply for one user message; in production it is the
// heuristic router backed by the orchestrator
type Answerer interface {
	Answer(ctx context.Context, message string) (agent.Result, *agent.Transcript)
}

// AgentMetadata is the static capability document served at
// /.well-known/agent.json
type AgentMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Endpoints   []string `json:"endpoints"`
	Version     string   `json:"version"`
}

// Server is the HTTP front door for the agent
type Server struct {
	answerer Answerer
	sessions *session.Store
	meta     AgentMetadata

	mux    *http.ServeMux
	server *http.Server
}

func NewServer(answerer Answerer, sessions *session.Store, meta AgentMetadata) *Server {
	if len(meta.Endpoints) == 0 {
		meta.Endpoints = []string{"run"}
	}
	s := &Server{
		answerer: answerer,
		sessions: sessions,
		meta:     meta,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/run", s.handleRun)
	s.mux.HandleFunc("/.well-known/agent.json", s.handleMetadata)
	s.mux.HandleFunc("/apps/", s.handleCreateSession)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
