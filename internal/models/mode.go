package models

import "strings"

// Mode is one of the six gameplay variants applied to a quiz.
type Mode string

const (
	ModeFlashcards Mode = "Flashcards"
	ModeLearn      Mode = "Learn"
	ModeTest       Mode = "Test"
	ModeBlocks     Mode = "Blocks"
	ModeBlast      Mode = "Blast"
	ModeMatch      Mode = "Match"
)

var allModes = []Mode{ModeFlashcards, ModeLearn, ModeTest, ModeBlocks, ModeBlast, ModeMatch}

// AllModes returns every mode in catalog order.
func AllModes() []Mode {
	out := make([]Mode, len(allModes))
	copy(out, allModes)
	return out
}

// ParseMode matches s case-insensitively against the known modes.
func ParseMode(s string) (Mode, bool) {
	s = strings.TrimSpace(s)
	for _, m := range allModes {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// Linear reports whether answering advances the attempt cursor by one card.
func (m Mode) Linear() bool {
	switch m {
	case ModeFlashcards, ModeLearn, ModeTest, ModeBlast:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}
