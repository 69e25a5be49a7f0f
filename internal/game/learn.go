package game

import (
	"context"

	"github.com/vytor/cosmosquiz/internal/models"
)

// Learn asks a multiple-choice question per card. Selecting an option
// records the outcome; a separate next action moves on.
type Learn struct {
	*session
	current  *models.Card
	options  []string
	answered bool
}

func (l *Learn) LoadCurrentCard() {
	l.answered = false
	l.options = nil
	idx := l.attempt.CurrentIndex
	l.current = l.cardAt(idx)
	if l.current == nil {
		l.checkLinear()
		return
	}
	l.options = choiceOptions(l.deps.Rand, l.quiz.Cards, idx)
}

func (l *Learn) Act(ctx context.Context, a Action) (Feedback, error) {
	switch a.Type {
	case ActionSelect:
		return l.answer(ctx, &a.Answer)
	case ActionDontKnow:
		return l.answer(ctx, nil)
	case ActionNext:
		if l.answered {
			l.LoadCurrentCard()
		}
		return l.feedback(false, false, ""), nil
	default:
		return Feedback{}, ErrUnsupportedAction
	}
}

// answer scores a pick; a nil pick is "don't know".
func (l *Learn) answer(ctx context.Context, pick *string) (Feedback, error) {
	card := l.current
	if card == nil || l.answered {
		return l.feedback(false, false, ""), nil
	}
	correct := pick != nil && *pick == card.Definition
	l.record(correct, card.ID, pick)
	l.answered = true
	l.checkLinear()
	return l.feedback(true, correct, card.Definition), l.commit(ctx)
}

func (l *Learn) Back(ctx context.Context) error {
	err := l.stepBack(ctx)
	l.LoadCurrentCard()
	return err
}

func (l *Learn) Reset(ctx context.Context) error {
	err := l.resetAttempt(ctx)
	l.LoadCurrentCard()
	return err
}

func (l *Learn) Snapshot() Snapshot {
	s := l.baseSnapshot()
	s.Card = viewOf(l.current, l.answered)
	s.Options = append([]string(nil), l.options...)
	s.Answered = l.answered
	return s
}
