// Package httpapi exposes the session API over plain HTTP. Sessions
// are carried in a cookie; a request without one gets a fresh reign.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"sovereign.ai/internal/protocol"
	"sovereign.ai/internal/session"
)

const SessionCookie = "sovereign_session"

type Server struct {
	store *session.Store
	log   *log.Logger
}

func NewServer(store *session.Store, logger *log.Logger) *Server {
	return &Server{store: store, log: logger}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/turn", s.handleTurn)
	mux.HandleFunc("/v1/event/resolve", s.handleResolve)
	mux.HandleFunc("/v1/policy/toggle", s.handleToggle)
	mux.HandleFunc("/v1/reset", s.handleReset)
}

// ensureSession resolves the cookie session or creates a new one,
// setting the cookie on the response.
func (s *Server) ensureSession(rw http.ResponseWriter, r *http.Request) *session.Handle {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if h, ok := s.store.Get(c.Value); ok {
			return h
		}
	}
	h := s.store.Create()
	http.SetCookie(rw, &http.Cookie{
		Name:     SessionCookie,
		Value:    h.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	if s.log != nil {
		s.log.Printf("session created id=%s", h.ID)
	}
	return h
}

func (s *Server) handleState(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h := s.ensureSession(rw, r)
	writeJSON(rw, http.StatusOK, h.Game.View())
}

func (s *Server) handleTurn(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h := s.ensureSession(rw, r)
	res := h.Game.ProcessTurn(r.Context())
	writeJSON(rw, http.StatusOK, turnResponse{TurnResult: res, State: h.Game.View()})
}

func (s *Server) handleResolve(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h := s.ensureSession(rw, r)

	var req protocol.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAction(rw, protocol.Fail(protocol.ErrBadRequest, "malformed body"), h)
		return
	}
	writeAction(rw, h.Game.ResolveEvent(req.EventID, req.OptionID), h)
}

func (s *Server) handleToggle(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h := s.ensureSession(rw, r)

	var req protocol.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAction(rw, protocol.Fail(protocol.ErrBadRequest, "malformed body"), h)
		return
	}
	writeAction(rw, h.Game.TogglePolicy(req.PolicyID), h)
}

func (s *Server) handleReset(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h := s.ensureSession(rw, r)
	h.Game.Reset()
	writeJSON(rw, http.StatusOK, h.Game.View())
}

type turnResponse struct {
	protocol.TurnResult
	State protocol.StateView `json:"state"`
}

type actionResponse struct {
	protocol.ActionResult
	State protocol.StateView `json:"state"`
}

// Action failures keep HTTP 200; the error code travels in the body so
// clients handle one shape. Only transport-level faults use 4xx/5xx.
func writeAction(rw http.ResponseWriter, res protocol.ActionResult, h *session.Handle) {
	writeJSON(rw, http.StatusOK, actionResponse{ActionResult: res, State: h.Game.View()})
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}
