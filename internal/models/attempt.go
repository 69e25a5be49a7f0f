package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Attempt is the progress of one user through one quiz in one mode.
// Each (UserID, QuizID, Mode) triple has at most one attempt.
// Attempt methods never perform I/O; callers persist after mutating.
type Attempt struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	QuizID         int64            `json:"quiz_id"`
	Mode           Mode             `json:"mode"`
	CurrentIndex   int              `json:"current_index"`
	CorrectCount   int              `json:"correct_count"`
	IncorrectCount int              `json:"incorrect_count"`
	IsCompleted    bool             `json:"is_completed"`
	UserAnswers    map[int64]string `json:"user_answers"`
	CorrectCards   map[int64]bool   `json:"correct_cards"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewAttempt returns a zeroed attempt with a fresh id.
func NewAttempt(userID string, quizID int64, mode Mode) Attempt {
	now := time.Now().UTC()
	return Attempt{
		ID:           uuid.NewString(),
		UserID:       userID,
		QuizID:       quizID,
		Mode:         mode,
		UserAnswers:  map[int64]string{},
		CorrectCards: map[int64]bool{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateProgress records the outcome for the card being answered.
// Linear modes advance the cursor by one; Blocks and Match position it
// themselves through SetCursor. Unknown card ids are recorded as given.
func (a *Attempt) UpdateProgress(correct bool, cardID int64, userAnswer *string) {
	a.ensureMaps()
	if correct {
		a.CorrectCount++
		a.CorrectCards[cardID] = true
	} else {
		a.IncorrectCount++
	}
	if userAnswer != nil {
		a.UserAnswers[cardID] = *userAnswer
	}
	if a.Mode.Linear() {
		a.CurrentIndex++
	}
}

// CheckCompletion marks the attempt completed once the cursor reaches
// total and reports the completion state.
func (a *Attempt) CheckCompletion(total int) bool {
	if a.CurrentIndex >= total {
		a.IsCompleted = true
	}
	return a.IsCompleted
}

// SetCursor moves the cursor to n, clamped at zero.
func (a *Attempt) SetCursor(n int) {
	if n < 0 {
		n = 0
	}
	a.CurrentIndex = n
}

// StepBack moves the cursor back one card (floor 0). Counters are kept.
func (a *Attempt) StepBack() {
	if a.CurrentIndex > 0 {
		a.CurrentIndex--
	}
	a.IsCompleted = false
}

// Reset zeroes progress while keeping the attempt's identity.
func (a *Attempt) Reset() {
	a.CurrentIndex = 0
	a.CorrectCount = 0
	a.IncorrectCount = 0
	a.IsCompleted = false
	a.UserAnswers = map[int64]string{}
	a.CorrectCards = map[int64]bool{}
}

// Answered is the number of recorded outcomes.
func (a Attempt) Answered() int {
	return a.CorrectCount + a.IncorrectCount
}

// Accuracy is the percentage of correct outcomes, 0 when nothing was answered.
func (a Attempt) Accuracy() float64 {
	n := a.Answered()
	if n == 0 {
		return 0
	}
	return 100 * float64(a.CorrectCount) / float64(n)
}

// CorrectCardIDs returns the correctly answered card ids in ascending order.
func (a Attempt) CorrectCardIDs() []int64 {
	ids := make([]int64, 0, len(a.CorrectCards))
	for id, ok := range a.CorrectCards {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a copy that shares no maps with a.
func (a Attempt) Clone() Attempt {
	answers := make(map[int64]string, len(a.UserAnswers))
	for k, v := range a.UserAnswers {
		answers[k] = v
	}
	correct := make(map[int64]bool, len(a.CorrectCards))
	for k, v := range a.CorrectCards {
		correct[k] = v
	}
	a.UserAnswers = answers
	a.CorrectCards = correct
	return a
}

func (a *Attempt) ensureMaps() {
	if a.UserAnswers == nil {
		a.UserAnswers = map[int64]string{}
	}
	if a.CorrectCards == nil {
		a.CorrectCards = map[int64]bool{}
	}
}
