package models

import "time"

// UserProgress tracks daily engagement: a streak of consecutive days with a
// completed session and the completion flags of the current week
// (index 0 = Monday).
type UserProgress struct {
	UserID            string     `json:"user_id"`
	StreakDays        int        `json:"streak_days"`
	WeeklyCompletions [7]bool    `json:"weekly_completions"`
	LastCompletedAt   *time.Time `json:"last_completed_at"`
}

func NewUserProgress(userID string) UserProgress {
	return UserProgress{UserID: userID}
}

// MarkCompletion records a completed session at now.
func (p *UserProgress) MarkCompletion(now time.Time) {
	today := dayStart(now)

	if p.LastCompletedAt == nil {
		p.StreakDays = 1
	} else {
		last := dayStart(p.LastCompletedAt.In(now.Location()))
		switch {
		case !today.After(last):
			if p.StreakDays == 0 {
				p.StreakDays = 1
			}
		case last.AddDate(0, 0, 1).Equal(today):
			p.StreakDays++
		default:
			p.StreakDays = 1
		}
		if !weekStart(last).Equal(weekStart(today)) {
			p.WeeklyCompletions = [7]bool{}
		}
	}

	p.WeeklyCompletions[weekdayIndex(now)] = true
	at := now
	p.LastCompletedAt = &at
}

// CompletedThisWeek counts the days of the current week with a completion.
func (p UserProgress) CompletedThisWeek() int {
	n := 0
	for _, done := range p.WeeklyCompletions {
		if done {
			n++
		}
	}
	return n
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func weekStart(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, -weekdayIndex(t))
}
