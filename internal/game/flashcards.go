package game

import (
	"context"

	"github.com/vytor/cosmosquiz/internal/models"
)

// Flashcards walks the deck once. The player flips a card and grades
// themselves.
type Flashcards struct {
	*session
	current    *models.Card
	showAnswer bool
}

func (f *Flashcards) LoadCurrentCard() {
	f.showAnswer = false
	f.current = f.cardAt(f.attempt.CurrentIndex)
	if f.current == nil {
		f.checkLinear()
	}
}

func (f *Flashcards) Act(ctx context.Context, a Action) (Feedback, error) {
	switch a.Type {
	case ActionFlip:
		if f.current != nil {
			f.showAnswer = !f.showAnswer
		}
		return f.feedback(false, false, ""), nil
	case ActionNext:
		return f.next(ctx, a.Correct)
	default:
		return Feedback{}, ErrUnsupportedAction
	}
}

func (f *Flashcards) next(ctx context.Context, correct bool) (Feedback, error) {
	card := f.current
	if card == nil {
		return f.feedback(false, false, ""), nil
	}
	f.record(correct, card.ID, nil)
	f.checkLinear()
	err := f.commit(ctx)
	f.LoadCurrentCard()
	return f.feedback(true, correct, card.Definition), err
}

func (f *Flashcards) Back(ctx context.Context) error {
	err := f.stepBack(ctx)
	f.LoadCurrentCard()
	return err
}

func (f *Flashcards) Reset(ctx context.Context) error {
	err := f.resetAttempt(ctx)
	f.LoadCurrentCard()
	return err
}

func (f *Flashcards) Snapshot() Snapshot {
	s := f.baseSnapshot()
	s.Card = viewOf(f.current, f.showAnswer)
	s.ShowAnswer = f.showAnswer
	return s
}
