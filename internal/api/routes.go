package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const requestTimeout = 15 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))
		r.Use(userMiddleware)
		r.Use(s.rateLimitMiddleware)

		r.Get("/quizzes", s.handleListQuizzes)
		r.Post("/quizzes", s.handleCreateQuiz)
		r.Get("/quizzes/{id}", s.handleGetQuiz)
		r.Put("/quizzes/{id}", s.handleUpdateQuiz)
		r.Delete("/quizzes/{id}", s.handleDeleteQuiz)
		r.Put("/quizzes/{id}/cards/{cardID}", s.handleUpdateCard)
		r.Get("/shared/{code}", s.handleSharedQuiz)

		r.Get("/favorites", s.handleListFavorites)
		r.Get("/favorites/{cardID}", s.handleGetFavorite)
		r.Put("/favorites/{cardID}", s.handleAddFavorite)
		r.Delete("/favorites/{cardID}", s.handleRemoveFavorite)

		r.Get("/progress", s.handleProgress)
		r.Get("/attempts", s.handleListAttempts)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleEndSession)
		r.Post("/sessions/{id}/actions", s.handleSessionAction)
		r.Post("/sessions/{id}/back", s.handleSessionBack)
		r.Post("/sessions/{id}/reset", s.handleSessionReset)
		r.Put("/sessions/{id}/test-types", s.handleSessionTestTypes)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", userHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Location"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(r)
}
