package game

import (
	"context"
	"fmt"

	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/metrics"
	"github.com/vytor/cosmosquiz/internal/models"
)

// CardView is the player-facing part of a card.
type CardView struct {
	ID         int64   `json:"id"`
	Term       string  `json:"term"`
	Definition string  `json:"definition,omitempty"`
	Hint       *string `json:"hint,omitempty"`
}

// Snapshot is a read-only view of an engine. Mode specific parts are nil for
// other modes.
type Snapshot struct {
	Mode           models.Mode `json:"mode"`
	AttemptID      string      `json:"attempt_id"`
	QuizID         int64       `json:"quiz_id"`
	Total          int         `json:"total"`
	CurrentIndex   int         `json:"current_index"`
	CorrectCount   int         `json:"correct_count"`
	IncorrectCount int         `json:"incorrect_count"`
	Completed      bool        `json:"completed"`
	Dirty          bool        `json:"dirty"`
	Card           *CardView   `json:"card,omitempty"`

	ShowAnswer bool     `json:"show_answer,omitempty"`
	Options    []string `json:"options,omitempty"`
	Answered   bool     `json:"answered,omitempty"`

	Question *QuestionView `json:"question,omitempty"`
	Blocks   *BlocksView   `json:"blocks,omitempty"`
	Targets  []Target      `json:"targets,omitempty"`
	Match    *MatchView    `json:"match,omitempty"`
}

// session holds the attempt and deck shared by all engines.
type session struct {
	mode    models.Mode
	deps    Deps
	quiz    models.Quiz
	userID  string
	attempt models.Attempt
	log     *logger.Logger

	dirty    bool
	notified bool
}

func (s *session) Mode() models.Mode { return s.mode }

func (s *session) Completed() bool { return s.attempt.IsCompleted }

func (s *session) total() int { return len(s.quiz.Cards) }

func (s *session) cardAt(i int) *models.Card {
	if i < 0 || i >= len(s.quiz.Cards) {
		return nil
	}
	return &s.quiz.Cards[i]
}

func (s *session) load(ctx context.Context) error {
	a, err := s.deps.Store.LoadOrCreate(ctx, s.userID, s.quiz.ID, s.mode)
	if err != nil {
		s.log.Error("failed to load attempt: quiz_id=%d, err=%v", s.quiz.ID, err)
		return fmt.Errorf("load attempt: %w", err)
	}
	s.attempt = a.Clone()
	if s.attempt.CurrentIndex > s.total() {
		s.attempt.SetCursor(s.total())
	}
	s.notified = s.attempt.IsCompleted
	return nil
}

// save persists the attempt. A failure leaves the engine dirty.
func (s *session) save(ctx context.Context) error {
	s.attempt.UpdatedAt = s.deps.Clock().UTC()
	if err := s.deps.Store.Update(ctx, s.attempt.Clone()); err != nil {
		s.dirty = true
		metrics.PersistFailures.WithLabelValues(s.mode.String()).Inc()
		s.log.Error("failed to save attempt: id=%s, err=%v", s.attempt.ID, err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.dirty = false
	return nil
}

func (s *session) Flush(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	s.log.Info("retrying attempt save: id=%s", s.attempt.ID)
	return s.save(ctx)
}

// record applies one outcome to the attempt.
func (s *session) record(correct bool, cardID int64, answer *string) {
	s.attempt.UpdateProgress(correct, cardID, answer)
	metrics.RecordAnswer(s.mode.String(), correct)
	s.log.Debug("answer recorded: card_id=%d, correct=%t, index=%d", cardID, correct, s.attempt.CurrentIndex)
}

// commit saves and fires the completion hook on the first transition to
// completed. The hook runs even when the save fails.
func (s *session) commit(ctx context.Context) error {
	err := s.save(ctx)
	if s.attempt.IsCompleted && !s.notified {
		s.notified = true
		metrics.SessionsCompleted.WithLabelValues(s.mode.String()).Inc()
		s.log.Info("attempt completed: id=%s, correct=%d, incorrect=%d", s.attempt.ID, s.attempt.CorrectCount, s.attempt.IncorrectCount)
		if s.deps.OnComplete != nil {
			s.deps.OnComplete(ctx, s.attempt.Clone())
		}
	}
	return err
}

// stepBack moves the cursor back one card and saves.
func (s *session) stepBack(ctx context.Context) error {
	s.attempt.StepBack()
	s.notified = false
	return s.save(ctx)
}

// resetAttempt zeroes the attempt in place and saves.
func (s *session) resetAttempt(ctx context.Context) error {
	s.attempt.Reset()
	s.notified = false
	s.log.Info("attempt reset: id=%s", s.attempt.ID)
	return s.save(ctx)
}

func (s *session) feedback(recorded, correct bool, answer string) Feedback {
	return Feedback{
		Recorded:      recorded,
		Correct:       correct,
		CorrectAnswer: answer,
		Completed:     s.attempt.IsCompleted,
	}
}

func (s *session) baseSnapshot() Snapshot {
	return Snapshot{
		Mode:           s.mode,
		AttemptID:      s.attempt.ID,
		QuizID:         s.quiz.ID,
		Total:          s.total(),
		CurrentIndex:   s.attempt.CurrentIndex,
		CorrectCount:   s.attempt.CorrectCount,
		IncorrectCount: s.attempt.IncorrectCount,
		Completed:      s.attempt.IsCompleted,
		Dirty:          s.dirty,
	}
}

func viewOf(c *models.Card, withDefinition bool) *CardView {
	if c == nil {
		return nil
	}
	v := &CardView{ID: c.ID, Term: c.Term, Hint: c.Hint}
	if withDefinition {
		v.Definition = c.Definition
	}
	return v
}

// checkLinear marks completion for modes whose cursor walks the deck.
func (s *session) checkLinear() {
	s.attempt.CheckCompletion(s.total())
}
