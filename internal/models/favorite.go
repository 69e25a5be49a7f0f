package models

import "time"

type Favorite struct {
	UserID  string    `json:"user_id"`
	CardID  int64     `json:"card_id"`
	QuizID  int64     `json:"quiz_id"`
	AddedAt time.Time `json:"added_at"`
}

// FavoriteCard joins a favorite with the card it marks.
type FavoriteCard struct {
	Favorite
	Term       string `json:"term"`
	Definition string `json:"definition"`
	QuizTitle  string `json:"quiz_title"`
}
