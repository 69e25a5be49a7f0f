package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cosmosquiz/internal/db"
	"github.com/vytor/cosmosquiz/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SampleQuiz builds a quiz with one card per term/definition pair. Card ids
// start at 1 so engines can be tested without a database.
func SampleQuiz(id int64, pairs ...string) models.Quiz {
	q := models.Quiz{
		ID:         id,
		ShareCode:  "test-code",
		Title:      "Test quiz",
		Categories: models.AllModes(),
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Cards = append(q.Cards, models.Card{
			ID:         int64(i/2 + 1),
			QuizID:     id,
			Position:   i / 2,
			Term:       pairs[i],
			Definition: pairs[i+1],
		})
	}
	return q
}

// Planets is a small astronomy deck used across tests.
func Planets() models.Quiz {
	return SampleQuiz(1,
		"Mercury", "Closest planet to the Sun",
		"Venus", "Hottest planet",
		"Earth", "Third planet from the Sun",
		"Mars", "The red planet",
		"Jupiter", "Largest planet",
	)
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
