package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new FavoriteRepository implementation
func NewFavoriteRepository(db *sql.DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) IsFavorite(ctx context.Context, cardID int64, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM favorites WHERE user_id = ? AND card_id = ?`, userID, cardID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("favorite_repo").Error("failed to check favorite: %v", err)
		return false, errors.Wrap(err, "check favorite")
	}
	return true, nil
}

// Add stores the favorite. Adding an existing favorite is a no-op.
func (r *favoriteRepository) Add(ctx context.Context, f models.Favorite) error {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("adding favorite: user=%s, card_id=%d", f.UserID, f.CardID)

	if f.AddedAt.IsZero() {
		f.AddedAt = utcNow()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO favorites (user_id, card_id, quiz_id, added_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, card_id) DO NOTHING
`, f.UserID, f.CardID, f.QuizID, f.AddedAt)
	if err != nil {
		log.Error("failed to add favorite: %v", err)
		return errors.Wrap(err, "add favorite")
	}
	return nil
}

// Remove deletes the favorite. Removing a missing favorite is a no-op.
func (r *favoriteRepository) Remove(ctx context.Context, cardID int64, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("removing favorite: user=%s, card_id=%d", userID, cardID)

	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND card_id = ?`, userID, cardID); err != nil {
		log.Error("failed to remove favorite: %v", err)
		return errors.Wrap(err, "remove favorite")
	}
	return nil
}

func (r *favoriteRepository) List(ctx context.Context, userID string) ([]models.FavoriteCard, error) {
	log := logger.FromContext(ctx).WithPrefix("favorite_repo")
	log.Debug("listing favorites: user=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT f.user_id, f.card_id, f.quiz_id, f.added_at, c.term, c.definition, q.title
FROM favorites f
JOIN cards c ON c.id = f.card_id
JOIN quizzes q ON q.id = f.quiz_id
WHERE f.user_id = ?
ORDER BY f.added_at DESC, f.card_id
`, userID)
	if err != nil {
		log.Error("failed to list favorites: %v", err)
		return nil, errors.Wrap(err, "list favorites")
	}
	defer rows.Close()

	var out []models.FavoriteCard
	for rows.Next() {
		var fc models.FavoriteCard
		if err := rows.Scan(&fc.UserID, &fc.CardID, &fc.QuizID, &fc.AddedAt, &fc.Term, &fc.Definition, &fc.QuizTitle); err != nil {
			return nil, errors.Wrap(err, "scan favorite")
		}
		out = append(out, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate favorites")
	}
	log.Debug("found %d favorites", len(out))
	return out, nil
}
