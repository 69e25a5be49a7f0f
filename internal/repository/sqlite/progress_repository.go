package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	return getProgress(ctx, r.db, userID)
}

func (r *progressRepository) Upsert(ctx context.Context, p models.UserProgress) error {
	return upsertProgress(ctx, r.db, p)
}

// Update reads, mutates and writes one user's progress in a single
// transaction. A missing row starts from NewUserProgress.
func (r *progressRepository) Update(ctx context.Context, userID string, fn func(*models.UserProgress)) (*models.UserProgress, error) {
	var out models.UserProgress
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := getProgress(ctx, tx, userID)
		if err != nil {
			return err
		}
		if p == nil {
			fresh := models.NewUserProgress(userID)
			p = &fresh
		}
		fn(p)
		if err := upsertProgress(ctx, tx, *p); err != nil {
			return err
		}
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func getProgress(ctx context.Context, q querier, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	var p models.UserProgress
	var weekly string
	var last sql.NullTime
	err := q.QueryRowContext(ctx, `
SELECT user_id, streak_days, weekly_completions, last_completed_at
FROM user_progress WHERE user_id = ?
`, userID).Scan(&p.UserID, &p.StreakDays, &weekly, &last)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no progress yet: user=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, errors.Wrap(err, "get progress")
	}
	p.WeeklyCompletions = decodeWeek(weekly)
	if last.Valid {
		t := last.Time
		p.LastCompletedAt = &t
	}
	return &p, nil
}

func upsertProgress(ctx context.Context, q querier, p models.UserProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("saving progress: user=%s, streak=%d", p.UserID, p.StreakDays)

	var last sql.NullTime
	if p.LastCompletedAt != nil {
		last = sql.NullTime{Time: p.LastCompletedAt.UTC(), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
INSERT INTO user_progress (user_id, streak_days, weekly_completions, last_completed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    streak_days = excluded.streak_days,
    weekly_completions = excluded.weekly_completions,
    last_completed_at = excluded.last_completed_at
`, p.UserID, p.StreakDays, encodeWeek(p.WeeklyCompletions), last)
	if err != nil {
		log.Error("failed to save progress: %v", err)
		return errors.Wrap(err, "save progress")
	}
	return nil
}

// encodeWeek stores the flags as seven '0'/'1' characters, Monday first.
func encodeWeek(w [7]bool) string {
	var b strings.Builder
	for _, done := range w {
		if done {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func decodeWeek(s string) [7]bool {
	var w [7]bool
	for i := 0; i < len(s) && i < 7; i++ {
		w[i] = s[i] == '1'
	}
	return w
}
