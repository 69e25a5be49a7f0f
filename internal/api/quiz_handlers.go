package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/cosmosquiz/internal/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/services"
)

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	var category models.Mode
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		m, ok := models.ParseMode(raw)
		if !ok {
			handleError(w, r, errors.NewValidationError("category", "unknown mode "+raw))
			return
		}
		category = m
	}

	quizzes, err := s.Quizzes.List(r.Context(), userFromContext(r.Context()), category)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in services.QuizInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	quiz, err := s.Quizzes.Create(r.Context(), userFromContext(r.Context()), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quizzes/"+formatID(quiz.ID))
	writeJSON(w, http.StatusCreated, quiz)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	quiz, err := s.Quizzes.Get(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var in services.QuizInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	quiz, err := s.Quizzes.Update(r.Context(), userFromContext(r.Context()), id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Quizzes.Delete(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var update models.CardUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Quizzes.UpdateCard(r.Context(), userFromContext(r.Context()), quizID, cardID, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("card updated: quiz_id=%d, card_id=%d", quizID, cardID)
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleSharedQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.Quizzes.GetByShareCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
