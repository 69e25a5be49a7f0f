package api

import (
	"database/sql"

	"github.com/vytor/cosmosquiz/internal/services"
)

type Server struct {
	DB          *sql.DB
	Quizzes     services.QuizService
	Favorites   services.FavoriteService
	Progress    services.ProgressService
	Attempts    services.AttemptService
	Play        services.PlayService
	Limiter     *RateLimiter
	CORSOrigins []string
}
