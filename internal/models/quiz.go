package models

import "time"

type Quiz struct {
	ID          int64     `json:"id"`
	ShareCode   string    `json:"share_code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatedBy   *string   `json:"created_by"` // nil for built-in samples
	Categories  []Mode    `json:"categories"`
	CreatedAt   time.Time `json:"created_at"`
	Cards       []Card    `json:"cards"`
}

// QuizFilter narrows quiz listings. A zero filter matches everything.
type QuizFilter struct {
	Category Mode
	// VisibleTo limits results to public, built-in and VisibleTo's own quizzes.
	VisibleTo string
	// CreatedBy limits results to one author's quizzes.
	CreatedBy string

	BuiltInOnly bool
	Limit       int
	Offset      int
}

// NewQuizID derives a quiz id from the clock.
func NewQuizID(now time.Time) int64 {
	return now.UnixMicro()
}

// IsBuiltIn reports whether the quiz ships with the app.
func (q Quiz) IsBuiltIn() bool {
	return q.CreatedBy == nil
}

// OwnedBy reports whether userID authored the quiz.
func (q Quiz) OwnedBy(userID string) bool {
	return q.CreatedBy != nil && *q.CreatedBy == userID
}

// VisibleTo reports whether userID may read the quiz.
func (q Quiz) VisibleTo(userID string) bool {
	return q.IsBuiltIn() || q.IsPublic || q.OwnedBy(userID)
}

func (q Quiz) HasCategory(m Mode) bool {
	for _, c := range q.Categories {
		if c == m {
			return true
		}
	}
	return false
}

// CardByID returns the card with the given id, or nil.
func (q Quiz) CardByID(id int64) *Card {
	for i := range q.Cards {
		if q.Cards[i].ID == id {
			return &q.Cards[i]
		}
	}
	return nil
}

// Clone returns a deep value snapshot so engines never share a quiz.
func (q Quiz) Clone() Quiz {
	q.CreatedBy = cloneString(q.CreatedBy)
	if q.Categories != nil {
		cats := make([]Mode, len(q.Categories))
		copy(cats, q.Categories)
		q.Categories = cats
	}
	if q.Cards != nil {
		cards := make([]Card, len(q.Cards))
		for i, c := range q.Cards {
			cards[i] = c.Clone()
		}
		q.Cards = cards
	}
	return q
}
