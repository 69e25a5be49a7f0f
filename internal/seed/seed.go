// Package seed installs the built-in sample quizzes on first run.
package seed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
	"github.com/vytor/cosmosquiz/internal/repository"
)

// SeededKey is the setting that marks the samples as installed.
const SeededKey = "samples_seeded"

type Seeder struct {
	quizzes  repository.QuizRepository
	settings repository.SettingsRepository
	clock    func() time.Time
}

func NewSeeder(quizzes repository.QuizRepository, settings repository.SettingsRepository) *Seeder {
	return &Seeder{quizzes: quizzes, settings: settings, clock: time.Now}
}

// SeedOnce inserts the sample quizzes unless a previous run already did.
// It reports whether anything was inserted.
func (s *Seeder) SeedOnce(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("seed")

	_, done, err := s.settings.Get(ctx, SeededKey)
	if err != nil {
		return false, errors.Wrap(err, "read seed marker")
	}
	if done {
		log.Debug("samples already seeded")
		return false, nil
	}

	if err := s.Seed(ctx); err != nil {
		return false, err
	}
	if err := s.settings.Set(ctx, SeededKey, s.clock().UTC().Format(time.RFC3339)); err != nil {
		return false, errors.Wrap(err, "write seed marker")
	}
	log.Info("sample quizzes seeded: count=%d", len(samples))
	return true, nil
}

// Seed inserts the sample quizzes that are not present yet, matched by
// share code. It ignores the seed marker.
func (s *Seeder) Seed(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("seed")
	base := models.NewQuizID(s.clock())
	now := s.clock().UTC()

	for i, sm := range samples {
		existing, err := s.quizzes.GetByShareCode(ctx, sm.shareCode)
		if err != nil {
			return errors.Wrapf(err, "look up sample %s", sm.shareCode)
		}
		if existing != nil {
			log.Debug("sample present, skipping: share_code=%s", sm.shareCode)
			continue
		}

		q := sm.quiz()
		q.ID = base + int64(i)
		q.CreatedAt = now
		for j := range q.Cards {
			q.Cards[j].CreatedAt = now
		}
		if _, err := s.quizzes.Insert(ctx, q); err != nil {
			return errors.Wrapf(err, "insert sample %s", sm.shareCode)
		}
	}
	return nil
}

// SampleCount is the number of built-in quizzes.
func SampleCount() int {
	return len(samples)
}
