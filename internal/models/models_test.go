package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cosmosquiz/internal/models"
)

func TestParseMode(t *testing.T) {
	m, ok := models.ParseMode(" learn ")
	require.True(t, ok)
	assert.Equal(t, models.ModeLearn, m)

	_, ok = models.ParseMode("Trivia")
	assert.False(t, ok)

	assert.Len(t, models.AllModes(), 6)
}

func TestQuiz_Ownership(t *testing.T) {
	owner := "alice"
	builtIn := models.Quiz{Title: "Planets"}
	private := models.Quiz{Title: "Mine", CreatedBy: &owner}
	public := models.Quiz{Title: "Shared", CreatedBy: &owner, IsPublic: true}

	assert.True(t, builtIn.IsBuiltIn())
	assert.True(t, builtIn.VisibleTo("bob"))

	assert.False(t, private.IsBuiltIn())
	assert.True(t, private.OwnedBy("alice"))
	assert.True(t, private.VisibleTo("alice"))
	assert.False(t, private.VisibleTo("bob"))

	assert.True(t, public.VisibleTo("bob"))
	assert.False(t, public.OwnedBy("bob"))
}

func TestQuiz_CloneIsDeep(t *testing.T) {
	hint := "red"
	q := models.Quiz{
		Categories: []models.Mode{models.ModeLearn},
		Cards:      []models.Card{{ID: 1, Term: "Mars", Definition: "Fourth planet", Hint: &hint, Image: []byte{1, 2}}},
	}

	c := q.Clone()
	c.Cards[0].Term = "Venus"
	*c.Cards[0].Hint = "hot"
	c.Cards[0].Image[0] = 9
	c.Categories[0] = models.ModeMatch

	assert.Equal(t, "Mars", q.Cards[0].Term)
	assert.Equal(t, "red", *q.Cards[0].Hint)
	assert.Equal(t, byte(1), q.Cards[0].Image[0])
	assert.True(t, q.HasCategory(models.ModeLearn))
	assert.False(t, q.HasCategory(models.ModeMatch))
}

func TestQuiz_CardByID(t *testing.T) {
	q := models.Quiz{Cards: []models.Card{{ID: 3, Term: "Sun"}}}
	require.NotNil(t, q.CardByID(3))
	assert.Nil(t, q.CardByID(4))
}

func TestCard_Apply(t *testing.T) {
	hint := "closest to the sun"
	c := models.Card{ID: 4, QuizID: 2, Term: "Mercury", Definition: "old"}

	c.Apply(models.CardUpdate{Term: "Mercury", Definition: "First planet", Hint: &hint})

	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, "First planet", c.Definition)
	require.NotNil(t, c.Hint)
	hint = "changed"
	assert.Equal(t, "closest to the sun", *c.Hint)
}

func TestNewQuizID_TimeSeeded(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Less(t, models.NewQuizID(t0), models.NewQuizID(t0.Add(time.Millisecond)))
}

func TestUserProgress_MarkCompletion(t *testing.T) {
	// 2024-03-04 is a Monday.
	mon := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	p := models.NewUserProgress("u1")

	p.MarkCompletion(mon)
	assert.Equal(t, 1, p.StreakDays)
	assert.True(t, p.WeeklyCompletions[0])

	p.MarkCompletion(mon.Add(3 * time.Hour))
	assert.Equal(t, 1, p.StreakDays, "same day keeps the streak")

	p.MarkCompletion(mon.AddDate(0, 0, 1))
	assert.Equal(t, 2, p.StreakDays)
	assert.True(t, p.WeeklyCompletions[1])

	p.MarkCompletion(mon.AddDate(0, 0, 4))
	assert.Equal(t, 1, p.StreakDays, "a gap restarts the streak")
	assert.Equal(t, 3, p.CompletedThisWeek())

	nextMon := mon.AddDate(0, 0, 7)
	p.MarkCompletion(nextMon)
	assert.Equal(t, 1, p.CompletedThisWeek(), "a new week clears the flags")
	assert.True(t, p.WeeklyCompletions[0])
}

func TestUserProgress_SundayIsLastSlot(t *testing.T) {
	sun := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	p := models.NewUserProgress("u1")
	p.MarkCompletion(sun)
	assert.True(t, p.WeeklyCompletions[6])
}
