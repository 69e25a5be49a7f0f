package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/cosmosquiz/internal/game"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository/sqlite"
	"github.com/vytor/cosmosquiz/internal/services"
	"github.com/vytor/cosmosquiz/internal/testutil"
	"github.com/vytor/cosmosquiz/internal/testutil/mocks"
)

type APISuite struct {
	suite.Suite
	handler http.Handler
	queue   *mocks.MockJobQueue
	close   func()
}

func (s *APISuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.close = func() { testutil.MustClose(s.T(), db) }
	gw := sqlite.NewGateway(db)

	_, err := gw.Quizzes.Insert(context.Background(), testutil.Planets())
	s.Require().NoError(err)

	s.queue = new(mocks.MockJobQueue)
	s.queue.On("EnqueueCompletion", mock.Anything, mock.AnythingOfType("time.Time")).Return(nil)

	quizzes := services.NewQuizService(gw.Quizzes)
	srv := &Server{
		DB:          db,
		Quizzes:     quizzes,
		Favorites:   services.NewFavoriteService(gw.Favorites, gw.Quizzes),
		Progress:    services.NewProgressService(gw.Progress),
		Attempts:    services.NewAttemptService(gw.Attempts),
		Play:        services.NewPlayService(quizzes, gw.Attempts, s.queue, game.Options{}),
		Limiter:     NewRateLimiter(1000, 1000),
		CORSOrigins: []string{"http://localhost:3000"},
	}
	s.handler = srv.Routes()
}

func (s *APISuite) TearDownTest() {
	s.close()
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) do(method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *APISuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *APISuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error errorBody `json:"error"`
	}
	s.decode(rec, &body)
	return body.Error.Code
}

func (s *APISuite) TestHealthEndpoints() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/readyz", "", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/metrics", "", nil).Code)
}

func (s *APISuite) TestMissingUserIsUnauthorized() {
	rec := s.do(http.MethodGet, "/api/quizzes", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHORIZED", s.errorCode(rec))
}

func (s *APISuite) TestQuizLifecycle() {
	rec := s.do(http.MethodPost, "/api/quizzes", "alice", services.QuizInput{
		Title:      "Moons",
		Categories: []models.Mode{models.ModeLearn},
		Cards: []services.CardInput{
			{CardUpdate: models.CardUpdate{Term: "Io", Definition: "Volcanic moon"}},
			{CardUpdate: models.CardUpdate{Term: "Titan", Definition: "Moon with a thick atmosphere"}},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Quiz
	s.decode(rec, &created)
	s.NotEmpty(created.ShareCode)
	s.Len(created.Cards, 2)
	path := "/api/quizzes/" + formatID(created.ID)

	rec = s.do(http.MethodGet, path, "bob", nil)
	s.Equal(http.StatusNotFound, rec.Code, "private quiz hidden from others")

	rec = s.do(http.MethodGet, "/api/shared/"+created.ShareCode, "bob", nil)
	s.Equal(http.StatusOK, rec.Code)

	var list []models.Quiz
	rec = s.do(http.MethodGet, "/api/quizzes?category=learn", "alice", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &list)
	s.Len(list, 2, "built-in planets plus the new quiz")

	rec = s.do(http.MethodPut, path+"/cards/"+formatID(created.Cards[0].ID), "alice",
		models.CardUpdate{Term: "Io", Definition: "Most volcanic body in the Solar System"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodDelete, path, "bob", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/quizzes/1", "alice", nil)
	s.Equal(http.StatusForbidden, rec.Code, "built-in quizzes cannot be deleted")

	rec = s.do(http.MethodDelete, path, "alice", nil)
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, "alice", nil).Code)
}

func (s *APISuite) TestValidationErrors() {
	rec := s.do(http.MethodPost, "/api/quizzes", "alice", services.QuizInput{Title: " "})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(rec))

	rec = s.do(http.MethodGet, "/api/quizzes/abc", "alice", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/quizzes?category=Trivia", "alice", nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/sessions", "alice", map[string]any{"unknown": true})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("BAD_REQUEST", s.errorCode(rec))
}

func (s *APISuite) TestFavorites() {
	rec := s.do(http.MethodPut, "/api/favorites/2", "alice", favoriteRequest{QuizID: 1})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var status favoriteStatus
	s.decode(s.do(http.MethodGet, "/api/favorites/2", "alice", nil), &status)
	s.True(status.Favorite)

	var favorites []models.FavoriteCard
	s.decode(s.do(http.MethodGet, "/api/favorites", "alice", nil), &favorites)
	s.Require().Len(favorites, 1)
	s.Equal("Venus", favorites[0].Term)

	s.Equal(http.StatusOK, s.do(http.MethodDelete, "/api/favorites/2", "alice", nil).Code)
	s.decode(s.do(http.MethodGet, "/api/favorites/2", "alice", nil), &status)
	s.False(status.Favorite)

	rec = s.do(http.MethodPut, "/api/favorites/99", "alice", favoriteRequest{QuizID: 1})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestPlaySession() {
	rec := s.do(http.MethodPost, "/api/sessions", "alice", services.StartRequest{QuizID: 1, Mode: "Flashcards"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var state services.SessionState
	s.decode(rec, &state)
	path := "/api/sessions/" + state.ID

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, "bob", nil).Code)

	for i := 0; i < 5; i++ {
		rec = s.do(http.MethodPost, path+"/actions", "alice", game.Action{Type: game.ActionNext, Correct: true})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	}
	s.decode(rec, &state)
	s.True(state.State.Completed)
	s.Equal(5, state.State.CorrectCount)

	rec = s.do(http.MethodPost, path+"/actions", "alice", game.Action{Type: game.ActionPlace})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, path+"/back", "alice", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &state)
	s.Equal(4, state.State.CurrentIndex)

	rec = s.do(http.MethodPost, path+"/reset", "alice", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &state)
	s.Zero(state.State.CorrectCount)

	var attempts []models.Attempt
	s.decode(s.do(http.MethodGet, "/api/attempts", "alice", nil), &attempts)
	s.Len(attempts, 1)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, "alice", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, path, "alice", nil).Code)
	s.queue.AssertCalled(s.T(), "EnqueueCompletion", "alice", mock.AnythingOfType("time.Time"))
}

func (s *APISuite) TestProgressDefaults() {
	var progress models.UserProgress
	rec := s.do(http.MethodGet, "/api/progress", "alice", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &progress)
	s.Equal("alice", progress.UserID)
	s.Zero(progress.StreakDays)
}

func (s *APISuite) TestCORSPreflight() {
	preflight := func(headers string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/quizzes", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", headers)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	// browsers send the requested header names lowercased
	for _, headers := range []string{strings.ToLower(userHeader), "content-type", "content-type," + strings.ToLower(userHeader)} {
		rec := preflight(headers)
		s.Equal("http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"), headers)
	}

	rec := preflight("x-not-allowed")
	s.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := &Server{Limiter: NewRateLimiter(0.001, 2)}
	h := userMiddleware(srv.rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	codes := map[string][]int{}
	for _, user := range []string{"alice", "alice", "alice", "bob"} {
		req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
		req.Header.Set(userHeader, user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes[user] = append(codes[user], rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes["alice"])
	assert.Equal(t, []int{http.StatusNoContent}, codes["bob"], "users are limited independently")
}
