// Package game implements the six quiz play modes on top of a persisted
// Attempt. Engines are single-owner: callers serialize access to one engine.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vytor/cosmosquiz/internal/logger"
	"github.com/vytor/cosmosquiz/internal/models"
)

var (
	// ErrPersist wraps a failed attempt save. In-memory state keeps the
	// mutation and Flush retries the save.
	ErrPersist = errors.New("attempt not persisted")

	// ErrUnsupportedAction is returned for actions a mode does not handle.
	ErrUnsupportedAction = errors.New("action not supported by this mode")

	// ErrInvalidAnswer is returned when an answer cannot be interpreted.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrQuestionPending is returned by Blocks when a block is placed while
	// a question waits for an answer.
	ErrQuestionPending = errors.New("question pending")
)

// AttemptStore is the part of the persistence gateway engines need.
type AttemptStore interface {
	LoadOrCreate(ctx context.Context, userID string, quizID int64, mode models.Mode) (*models.Attempt, error)
	Update(ctx context.Context, attempt models.Attempt) error
}

// Deps are the collaborators shared by every engine.
type Deps struct {
	Store AttemptStore
	Rand  *rand.Rand
	Clock func() time.Time

	// OnComplete runs once each time the attempt transitions to completed.
	OnComplete func(ctx context.Context, attempt models.Attempt)
}

// Options tune individual modes. Zero values select defaults.
type Options struct {
	TestTypes        []QuestionType
	MismatchDelay    time.Duration
	MatchPairs       int
	BlastMinDistance float64
	BlastMaxTries    int
}

const (
	defaultMismatchDelay    = time.Second
	defaultMatchPairs       = 8
	defaultBlastMinDistance = 0.25
	defaultBlastMaxTries    = 50
)

func (o Options) withDefaults() Options {
	if len(o.TestTypes) == 0 {
		o.TestTypes = AllQuestionTypes()
	}
	if o.MismatchDelay <= 0 {
		o.MismatchDelay = defaultMismatchDelay
	}
	if o.MatchPairs <= 0 {
		o.MatchPairs = defaultMatchPairs
	}
	if o.BlastMinDistance <= 0 {
		o.BlastMinDistance = defaultBlastMinDistance
	}
	if o.BlastMaxTries <= 0 {
		o.BlastMaxTries = defaultBlastMaxTries
	}
	return o
}

// ActionType names a player action.
type ActionType string

const (
	ActionFlip     ActionType = "flip"
	ActionNext     ActionType = "next"
	ActionSelect   ActionType = "select"
	ActionDontKnow ActionType = "dont_know"
	ActionSubmit   ActionType = "submit"
	ActionPlace    ActionType = "place"
	ActionTap      ActionType = "tap"
	ActionTile     ActionType = "tile"
	ActionClear    ActionType = "clear"
)

// Action is one player input. Only the fields relevant to Type are read.
type Action struct {
	Type    ActionType `json:"type"`
	Correct bool       `json:"correct,omitempty"`
	Answer  string     `json:"answer,omitempty"`
	Row     int        `json:"row,omitempty"`
	Col     int        `json:"col,omitempty"`
	Tile    int        `json:"tile,omitempty"`
}

// Feedback describes the outcome of an action.
type Feedback struct {
	// Recorded is true when the action recorded an answer on the attempt.
	Recorded      bool   `json:"recorded"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Placed        bool   `json:"placed,omitempty"`
	Completed     bool   `json:"completed"`
}

// Engine is the play loop shared by all modes.
type Engine interface {
	Mode() models.Mode
	// LoadCurrentCard positions the engine on the attempt's cursor, marking
	// the attempt completed when the cursor is past the deck.
	LoadCurrentCard()
	Act(ctx context.Context, action Action) (Feedback, error)
	// Back moves to the previous card. Blocks and Match do not support it.
	Back(ctx context.Context) error
	// Reset zeroes the attempt in place and restarts the mode.
	Reset(ctx context.Context) error
	// Flush retries a save that previously failed.
	Flush(ctx context.Context) error
	Snapshot() Snapshot
	Completed() bool
}

// New loads or creates the attempt for (userID, quiz, mode) and returns the
// engine for mode. The quiz is cloned; later edits to it do not leak in.
func New(ctx context.Context, mode models.Mode, deps Deps, quiz models.Quiz, userID string, opts Options) (Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("game: attempt store is required")
	}
	if deps.Rand == nil {
		now := time.Now().UnixNano()
		deps.Rand = rand.New(rand.NewPCG(uint64(now), uint64(now>>1)^0x9e3779b97f4a7c15))
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	opts = opts.withDefaults()

	base := &session{
		mode:   mode,
		deps:   deps,
		quiz:   quiz.Clone(),
		userID: userID,
		log:    logger.FromContext(ctx).WithPrefix("game").WithFields(map[string]any{"mode": mode.String(), "user": userID}),
	}

	var e Engine
	switch mode {
	case models.ModeFlashcards:
		e = &Flashcards{session: base}
	case models.ModeLearn:
		e = &Learn{session: base}
	case models.ModeTest:
		t := &Test{session: base}
		if err := t.SetTypes(opts.TestTypes); err != nil {
			return nil, err
		}
		e = t
	case models.ModeBlocks:
		e = &Blocks{session: base}
	case models.ModeBlast:
		e = &Blast{session: base, minDistance: opts.BlastMinDistance, maxTries: opts.BlastMaxTries}
	case models.ModeMatch:
		e = &Match{session: base, delay: opts.MismatchDelay, maxPairs: opts.MatchPairs}
	default:
		return nil, fmt.Errorf("game: unknown mode %q", mode)
	}

	if err := base.load(ctx); err != nil {
		return nil, err
	}
	wasCompleted := base.attempt.IsCompleted
	e.LoadCurrentCard()
	if base.attempt.IsCompleted && !wasCompleted {
		// the deck is empty or shrank below the saved cursor
		if err := base.save(ctx); err != nil {
			return e, err
		}
	}
	base.log.Debug("engine ready: quiz_id=%d, index=%d, completed=%t", quiz.ID, base.attempt.CurrentIndex, base.attempt.IsCompleted)
	return e, nil
}
