package models

import (
	"bytes"
	"time"
)

type Card struct {
	ID                   int64     `json:"id"`
	QuizID               int64     `json:"quiz_id"`
	Position             int       `json:"position"`
	Term                 string    `json:"term"`
	Definition           string    `json:"definition"`
	Hint                 *string   `json:"hint,omitempty"`
	Image                []byte    `json:"image,omitempty"`
	TermFormatting       []byte    `json:"term_formatting,omitempty"`
	DefinitionFormatting []byte    `json:"definition_formatting,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// CardUpdate replaces the authored content of a card. Identity and
// ownership are not touched.
type CardUpdate struct {
	Term                 string  `json:"term"`
	Definition           string  `json:"definition"`
	Hint                 *string `json:"hint,omitempty"`
	Image                []byte  `json:"image,omitempty"`
	TermFormatting       []byte  `json:"term_formatting,omitempty"`
	DefinitionFormatting []byte  `json:"definition_formatting,omitempty"`
}

// Apply overwrites term, definition, hint and image blobs.
func (c *Card) Apply(u CardUpdate) {
	c.Term = u.Term
	c.Definition = u.Definition
	c.Hint = cloneString(u.Hint)
	c.Image = cloneBytes(u.Image)
	c.TermFormatting = cloneBytes(u.TermFormatting)
	c.DefinitionFormatting = cloneBytes(u.DefinitionFormatting)
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	c.Hint = cloneString(c.Hint)
	c.Image = cloneBytes(c.Image)
	c.TermFormatting = cloneBytes(c.TermFormatting)
	c.DefinitionFormatting = cloneBytes(c.DefinitionFormatting)
	return c
}

// SameContent reports whether two cards carry identical authored content.
func (c Card) SameContent(o Card) bool {
	return c.Term == o.Term &&
		c.Definition == o.Definition &&
		equalStringPtr(c.Hint, o.Hint) &&
		bytes.Equal(c.Image, o.Image) &&
		bytes.Equal(c.TermFormatting, o.TermFormatting) &&
		bytes.Equal(c.DefinitionFormatting, o.DefinitionFormatting)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
