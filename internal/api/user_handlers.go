package api

import (
	"net/http"

	"github.com/vytor/cosmosquiz/internal/models"
)

type favoriteRequest struct {
	QuizID int64 `json:"quiz_id"`
}

type favoriteStatus struct {
	CardID   int64 `json:"card_id"`
	Favorite bool  `json:"favorite"`
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.Favorites.List(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if favorites == nil {
		favorites = []models.FavoriteCard{}
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (s *Server) handleGetFavorite(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	ok, err := s.Favorites.IsFavorite(r.Context(), userFromContext(r.Context()), cardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{CardID: cardID, Favorite: ok})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req favoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Favorites.Add(r.Context(), userFromContext(r.Context()), req.QuizID, cardID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{CardID: cardID, Favorite: true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Favorites.Remove(r.Context(), userFromContext(r.Context()), cardID); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteStatus{CardID: cardID, Favorite: false})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.Progress.Get(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.Attempts.List(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}
