package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

const attemptSelect = `
SELECT id, user_id, quiz_id, mode, current_index, correct_count, incorrect_count,
       is_completed, user_answers, correct_cards, created_at, updated_at
FROM attempts
`

type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db *sql.DB) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

// LoadOrCreate returns the stored attempt for the triple, inserting a zeroed
// one first when none exists. Repeated calls return the same id.
func (r *attemptRepository) LoadOrCreate(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("loading attempt: user=%s, quiz_id=%d, mode=%s", userID, quizID, mode)

	fresh := models.NewAttempt(userID, quizID, mode)
	_, err := r.db.ExecContext(ctx, `
INSERT INTO attempts (id, user_id, quiz_id, mode, user_answers, correct_cards, created_at, updated_at)
VALUES (?, ?, ?, ?, '{}', '[]', ?, ?)
ON CONFLICT(user_id, quiz_id, mode) DO NOTHING
`, fresh.ID, userID, quizID, string(mode), fresh.CreatedAt, fresh.UpdatedAt)
	if err != nil {
		log.Error("failed to create attempt: %v", err)
		return nil, errors.Wrap(err, "create attempt")
	}

	a, err := r.Get(ctx, userID, quizID, mode)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, errors.Errorf("attempt for quiz %d vanished after insert", quizID)
	}
	log.Debug("attempt ready: id=%s, index=%d, completed=%t", a.ID, a.CurrentIndex, a.IsCompleted)
	return a, nil
}

// Update writes the full attempt state, keyed by its triple.
func (r *attemptRepository) Update(ctx context.Context, a models.Attempt) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("saving attempt: id=%s, index=%d, correct=%d, incorrect=%d, completed=%t",
		a.ID, a.CurrentIndex, a.CorrectCount, a.IncorrectCount, a.IsCompleted)

	answers, correct, err := encodeAttemptMaps(a)
	if err != nil {
		log.Error("failed to encode attempt: %v", err)
		return err
	}
	now := utcNow()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO attempts (id, user_id, quiz_id, mode, current_index, correct_count, incorrect_count,
                      is_completed, user_answers, correct_cards, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, quiz_id, mode) DO UPDATE SET
    current_index = excluded.current_index,
    correct_count = excluded.correct_count,
    incorrect_count = excluded.incorrect_count,
    is_completed = excluded.is_completed,
    user_answers = excluded.user_answers,
    correct_cards = excluded.correct_cards,
    updated_at = excluded.updated_at
`, a.ID, a.UserID, a.QuizID, string(a.Mode), a.CurrentIndex, a.CorrectCount, a.IncorrectCount,
		a.IsCompleted, answers, correct, a.CreatedAt, now)
	if err != nil {
		log.Error("failed to save attempt: %v", err)
		return errors.Wrap(err, "save attempt")
	}
	return nil
}

func (r *attemptRepository) Get(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")

	row := r.db.QueryRowContext(ctx, attemptSelect+`WHERE user_id = ? AND quiz_id = ? AND mode = ?`, userID, quizID, string(mode))
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("attempt not found: user=%s, quiz_id=%d, mode=%s", userID, quizID, mode)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	return a, nil
}

func (r *attemptRepository) ListForUser(ctx context.Context, userID string) ([]models.Attempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("listing attempts: user=%s", userID)

	rows, err := r.db.QueryContext(ctx, attemptSelect+`WHERE user_id = ? ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, errors.Wrap(err, "list attempts")
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate attempts")
	}
	log.Debug("found %d attempts", len(attempts))
	return attempts, nil
}

func (r *attemptRepository) DeleteAll(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	res, err := r.db.ExecContext(ctx, `DELETE FROM attempts`)
	if err != nil {
		log.Error("failed to delete attempts: %v", err)
		return errors.Wrap(err, "delete attempts")
	}
	n, _ := res.RowsAffected()
	log.Info("deleted %d attempts", n)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(s rowScanner) (*models.Attempt, error) {
	var a models.Attempt
	var mode, answers, correct string
	var createdAt, updatedAt time.Time
	if err := s.Scan(&a.ID, &a.UserID, &a.QuizID, &mode, &a.CurrentIndex, &a.CorrectCount,
		&a.IncorrectCount, &a.IsCompleted, &answers, &correct, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "scan attempt")
	}
	a.Mode = models.Mode(mode)
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt

	a.UserAnswers = map[int64]string{}
	if answers != "" {
		if err := json.Unmarshal([]byte(answers), &a.UserAnswers); err != nil {
			return nil, errors.Wrapf(err, "decode answers of attempt %s", a.ID)
		}
	}
	var ids []int64
	if correct != "" {
		if err := json.Unmarshal([]byte(correct), &ids); err != nil {
			return nil, errors.Wrapf(err, "decode correct cards of attempt %s", a.ID)
		}
	}
	a.CorrectCards = make(map[int64]bool, len(ids))
	for _, id := range ids {
		a.CorrectCards[id] = true
	}
	return &a, nil
}

func encodeAttemptMaps(a models.Attempt) (string, string, error) {
	answers := a.UserAnswers
	if answers == nil {
		answers = map[int64]string{}
	}
	ab, err := json.Marshal(answers)
	if err != nil {
		return "", "", errors.Wrap(err, "encode answers")
	}
	cb, err := json.Marshal(a.CorrectCardIDs())
	if err != nil {
		return "", "", errors.Wrap(err, "encode correct cards")
	}
	return string(ab), string(cb), nil
}
