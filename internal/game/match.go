package game

import (
	"context"
	"fmt"
	"time"
)

// TileKind tells which side of a card a Match tile shows.
type TileKind string

const (
	TileTerm       TileKind = "term"
	TileDefinition TileKind = "definition"
)

// Tile is one face-up card on the Match board.
type Tile struct {
	CardID  int64    `json:"card_id"`
	Kind    TileKind `json:"kind"`
	Text    string   `json:"text"`
	Matched bool     `json:"matched"`
}

// MatchView is the board state of a Match session.
type MatchView struct {
	Tiles      []Tile `json:"tiles"`
	Selected   []int  `json:"selected"`
	Matched    int    `json:"matched"`
	TotalPairs int    `json:"total_pairs"`
	Mismatch   bool   `json:"mismatch"`
}

// Match is the memory pairs game over the first cards of the deck. Pairing a
// term with its definition records a correct answer; a wrong pair records an
// incorrect one and is cleared after a short delay.
type Match struct {
	*session
	delay    time.Duration
	maxPairs int

	tiles      []Tile
	totalPairs int
	matched    map[int64]bool
	selected   []int
	// mismatchAt is set while a wrong pair is still shown.
	mismatchAt time.Time
}

func (m *Match) LoadCurrentCard() {
	m.totalPairs = min(m.maxPairs, m.total())
	if m.tiles == nil {
		m.deal()
	}
	m.matched = map[int64]bool{}
	for i := 0; i < m.totalPairs; i++ {
		id := m.quiz.Cards[i].ID
		if m.attempt.CorrectCards[id] {
			m.matched[id] = true
		}
	}
	for i := range m.tiles {
		m.tiles[i].Matched = m.matched[m.tiles[i].CardID]
	}
	m.attempt.SetCursor(len(m.matched))
	m.attempt.CheckCompletion(m.totalPairs)
}

// deal lays out two tiles per card in random order.
func (m *Match) deal() {
	m.tiles = make([]Tile, 0, 2*m.totalPairs)
	for _, c := range m.quiz.Cards[:m.totalPairs] {
		m.tiles = append(m.tiles,
			Tile{CardID: c.ID, Kind: TileTerm, Text: c.Term},
			Tile{CardID: c.ID, Kind: TileDefinition, Text: c.Definition},
		)
	}
	m.deps.Rand.Shuffle(len(m.tiles), func(i, j int) { m.tiles[i], m.tiles[j] = m.tiles[j], m.tiles[i] })
	m.selected = nil
	m.mismatchAt = time.Time{}
}

func (m *Match) Act(ctx context.Context, a Action) (Feedback, error) {
	switch a.Type {
	case ActionTile:
		return m.pick(ctx, a.Tile)
	case ActionClear:
		m.clearSelection()
		return m.feedback(false, false, ""), nil
	default:
		return Feedback{}, ErrUnsupportedAction
	}
}

func (m *Match) pick(ctx context.Context, idx int) (Feedback, error) {
	if idx < 0 || idx >= len(m.tiles) {
		return Feedback{}, fmt.Errorf("%w: tile %d out of range", ErrInvalidAnswer, idx)
	}
	if m.attempt.IsCompleted {
		return m.feedback(false, false, ""), nil
	}
	if !m.mismatchAt.IsZero() {
		if !m.mismatchExpired() {
			return m.feedback(false, false, ""), nil
		}
		m.clearSelection()
	}
	if m.tiles[idx].Matched || (len(m.selected) == 1 && m.selected[0] == idx) {
		return m.feedback(false, false, ""), nil
	}

	m.selected = append(m.selected, idx)
	if len(m.selected) < 2 {
		return m.feedback(false, false, ""), nil
	}

	first, second := m.tiles[m.selected[0]], m.tiles[m.selected[1]]
	if first.CardID == second.CardID && first.Kind != second.Kind {
		m.matched[first.CardID] = true
		m.tiles[m.selected[0]].Matched = true
		m.tiles[m.selected[1]].Matched = true
		m.selected = nil
		m.record(true, first.CardID, nil)
		m.attempt.SetCursor(len(m.matched))
		m.attempt.CheckCompletion(m.totalPairs)
		return m.feedback(true, true, ""), m.commit(ctx)
	}

	m.record(false, first.CardID, nil)
	m.mismatchAt = m.deps.Clock()
	return m.feedback(true, false, ""), m.commit(ctx)
}

func (m *Match) mismatchExpired() bool {
	return !m.deps.Clock().Before(m.mismatchAt.Add(m.delay))
}

func (m *Match) clearSelection() {
	m.selected = nil
	m.mismatchAt = time.Time{}
}

func (m *Match) Back(context.Context) error {
	return ErrUnsupportedAction
}

func (m *Match) Reset(ctx context.Context) error {
	err := m.resetAttempt(ctx)
	m.tiles = nil
	m.LoadCurrentCard()
	return err
}

func (m *Match) Snapshot() Snapshot {
	s := m.baseSnapshot()
	s.Total = m.totalPairs
	view := &MatchView{
		Tiles:      append([]Tile(nil), m.tiles...),
		Selected:   []int{},
		Matched:    len(m.matched),
		TotalPairs: m.totalPairs,
	}
	if m.mismatchAt.IsZero() || !m.mismatchExpired() {
		view.Selected = append(view.Selected, m.selected...)
		view.Mismatch = !m.mismatchAt.IsZero()
	}
	s.Match = view
	return s
}
