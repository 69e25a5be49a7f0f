package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vytor/cosmosquiz/internal/models"
)

// QuestionType is one of the Test mode question formats.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Written        QuestionType = "written"
	FillBlank      QuestionType = "fill_blank"
)

// BlankPlaceholder replaces the masked word of a fill-in-the-blank term.
const BlankPlaceholder = "_____"

// AllQuestionTypes returns every question type.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{MultipleChoice, TrueFalse, Written, FillBlank}
}

// ParseQuestionType accepts the type names case-insensitively.
func ParseQuestionType(s string) (QuestionType, bool) {
	for _, t := range AllQuestionTypes() {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

// QuestionView shows the current Test or Blocks question.
type QuestionView struct {
	Type QuestionType `json:"type,omitempty"`

	// Prompt is the displayed definition for true/false and the blanked term
	// for fill-in-the-blank.
	Prompt       string `json:"prompt,omitempty"`
	AttemptsLeft int    `json:"attempts_left,omitempty"`
}

// Test mixes four question types; one is drawn per card from the enabled set.
type Test struct {
	*session
	types []QuestionType

	current     *models.Card
	currentType QuestionType
	options     []string
	prompt      string

	// shownCorrect reports whether the true/false prompt is the card's own
	// definition.
	shownCorrect bool
}

// SetTypes replaces the enabled question types. The set must not be empty.
func (t *Test) SetTypes(types []QuestionType) error {
	if len(types) == 0 {
		return errors.New("game: at least one question type is required")
	}
	seen := map[QuestionType]bool{}
	out := make([]QuestionType, 0, len(types))
	for _, qt := range types {
		parsed, ok := ParseQuestionType(string(qt))
		if !ok {
			return fmt.Errorf("game: unknown question type %q", qt)
		}
		qt = parsed
		if !seen[qt] {
			seen[qt] = true
			out = append(out, qt)
		}
	}
	t.types = out
	if t.current != nil && !seen[t.currentType] {
		t.prepare()
	}
	return nil
}

// Types returns the enabled question types.
func (t *Test) Types() []QuestionType {
	return append([]QuestionType(nil), t.types...)
}

func (t *Test) LoadCurrentCard() {
	t.current = t.cardAt(t.attempt.CurrentIndex)
	if t.current == nil {
		t.options, t.prompt, t.currentType = nil, "", ""
		t.checkLinear()
		return
	}
	t.prepare()
}

// prepare draws the question type for the current card and builds it.
func (t *Test) prepare() {
	idx := t.attempt.CurrentIndex
	r := t.deps.Rand
	t.currentType = t.types[r.IntN(len(t.types))]
	t.options, t.prompt, t.shownCorrect = nil, "", false

	switch t.currentType {
	case MultipleChoice:
		t.options = choiceOptions(r, t.quiz.Cards, idx)
	case TrueFalse:
		t.prompt, t.shownCorrect = t.current.Definition, true
		if r.IntN(2) == 0 {
			if wrong, ok := wrongDefinition(r, t.quiz.Cards, idx); ok {
				t.prompt, t.shownCorrect = wrong, false
			}
		}
	case FillBlank:
		t.prompt = blankTerm(r.IntN, t.current.Term)
		t.options = choiceOptions(r, t.quiz.Cards, idx)
	}
}

// blankTerm masks one random word of a multi-word term. Single words
// degrade to the bare placeholder.
func blankTerm(intn func(int) int, term string) string {
	words := strings.Split(term, " ")
	if len(words) < 2 {
		return BlankPlaceholder
	}
	words[intn(len(words))] = BlankPlaceholder
	return strings.Join(words, " ")
}

func (t *Test) Act(ctx context.Context, a Action) (Feedback, error) {
	switch a.Type {
	case ActionSubmit, ActionSelect:
		return t.submit(ctx, a.Answer)
	case ActionDontKnow:
		return t.skip(ctx)
	default:
		return Feedback{}, ErrUnsupportedAction
	}
}

func (t *Test) submit(ctx context.Context, answer string) (Feedback, error) {
	card := t.current
	if card == nil {
		return t.feedback(false, false, ""), nil
	}
	correct, err := t.score(card, answer)
	if err != nil {
		return Feedback{}, err
	}
	t.record(correct, card.ID, &answer)
	return t.advance(ctx, correct, card)
}

func (t *Test) skip(ctx context.Context) (Feedback, error) {
	card := t.current
	if card == nil {
		return t.feedback(false, false, ""), nil
	}
	t.record(false, card.ID, nil)
	return t.advance(ctx, false, card)
}

func (t *Test) advance(ctx context.Context, correct bool, card *models.Card) (Feedback, error) {
	t.checkLinear()
	err := t.commit(ctx)
	fb := t.feedback(true, correct, card.Definition)
	t.LoadCurrentCard()
	return fb, err
}

// score checks answer against the current question. Fill-in-the-blank is
// scored against the definition options like multiple choice.
func (t *Test) score(card *models.Card, answer string) (bool, error) {
	switch t.currentType {
	case TrueFalse:
		v, err := strconv.ParseBool(strings.TrimSpace(answer))
		if err != nil {
			return false, fmt.Errorf("%w: true/false expected, got %q", ErrInvalidAnswer, answer)
		}
		return v == t.shownCorrect, nil
	case Written:
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(card.Definition)), nil
	default:
		return answer == card.Definition, nil
	}
}

func (t *Test) Back(ctx context.Context) error {
	err := t.stepBack(ctx)
	t.LoadCurrentCard()
	return err
}

func (t *Test) Reset(ctx context.Context) error {
	err := t.resetAttempt(ctx)
	t.LoadCurrentCard()
	return err
}

func (t *Test) Snapshot() Snapshot {
	s := t.baseSnapshot()
	s.Card = viewOf(t.current, false)
	if t.currentType == FillBlank && s.Card != nil {
		s.Card.Term = t.prompt
	}
	s.Options = append([]string(nil), t.options...)
	if t.current != nil {
		s.Question = &QuestionView{Type: t.currentType, Prompt: t.prompt}
	}
	return s
}
