package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/cosmosquiz/internal/game"
	"github.com/vytor/cosmosquiz/internal/services"
)

type testTypesRequest struct {
	Types []string `json:"types"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	state, err := s.Play.Start(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+state.ID)
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Play.Get(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"))
	s.writeSession(w, r, state, err)
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	var action game.Action
	if err := decodeJSON(w, r, &action); err != nil {
		handleError(w, r, err)
		return
	}
	state, err := s.Play.Act(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"), action)
	s.writeSession(w, r, state, err)
}

func (s *Server) handleSessionBack(w http.ResponseWriter, r *http.Request) {
	state, err := s.Play.Back(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"))
	s.writeSession(w, r, state, err)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.Play.Reset(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"))
	s.writeSession(w, r, state, err)
}

func (s *Server) handleSessionTestTypes(w http.ResponseWriter, r *http.Request) {
	var req testTypesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	state, err := s.Play.SetTestTypes(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"), req.Types)
	s.writeSession(w, r, state, err)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Play.End(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, state *services.SessionState, err error) {
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
