package game

import (
	"context"
	"strings"

	"github.com/vytor/cosmosquiz/internal/models"
)

const (
	// GridSize is the side of the Blocks board.
	GridSize = 10

	// maxShape is the largest square block side.
	maxShape     = 3
	blockLives   = 3
	questionGate = 2
)

// Grid is the Blocks board; true cells are occupied.
type Grid [GridSize][GridSize]bool

// CanPlaceShape reports whether a size×size square fits with its top-left
// corner at (row, col) on empty cells only.
func CanPlaceShape(g *Grid, row, col, size int) bool {
	if size <= 0 || row < 0 || col < 0 || row+size > GridSize || col+size > GridSize {
		return false
	}
	for r := row; r < row+size; r++ {
		for c := col; c < col+size; c++ {
			if g[r][c] {
				return false
			}
		}
	}
	return true
}

// clearLines empties every full row and column and returns how many lines
// were cleared.
func (g *Grid) clearLines() int {
	var rows, cols []int
	for i := 0; i < GridSize; i++ {
		fullRow, fullCol := true, true
		for j := 0; j < GridSize; j++ {
			fullRow = fullRow && g[i][j]
			fullCol = fullCol && g[j][i]
		}
		if fullRow {
			rows = append(rows, i)
		}
		if fullCol {
			cols = append(cols, i)
		}
	}
	for _, r := range rows {
		for j := 0; j < GridSize; j++ {
			g[r][j] = false
		}
	}
	for _, c := range cols {
		for j := 0; j < GridSize; j++ {
			g[j][c] = false
		}
	}
	return len(rows) + len(cols)
}

// BlocksView is the board state of a Blocks session.
type BlocksView struct {
	Grid         Grid `json:"grid"`
	ShapeSize    int  `json:"shape_size"`
	PlaceCount   int  `json:"place_count"`
	AttemptsLeft int  `json:"attempts_left"`
	ShowQuestion bool `json:"show_question"`
	LinesCleared int  `json:"lines_cleared"`
	BoardClears  int  `json:"board_clears"`
}

// Blocks gates quiz questions behind a block placing puzzle. Every second
// placement surfaces a random card; answering it correctly moves the cursor.
type Blocks struct {
	*session
	grid         Grid
	shape        int
	placeCount   int
	attemptsLeft int
	linesCleared int
	boardClears  int

	showQuestion bool
	question     *models.Card
}

func (b *Blocks) LoadCurrentCard() {
	if b.attemptsLeft == 0 {
		b.resetBoard()
	}
	if b.total() == 0 {
		b.attempt.SetCursor(0)
		b.attempt.CheckCompletion(0)
	}
	b.ensureRoom()
}

func (b *Blocks) resetBoard() {
	b.grid = Grid{}
	b.placeCount = 0
	b.linesCleared = 0
	b.boardClears = 0
	b.attemptsLeft = blockLives
	b.showQuestion = false
	b.question = nil
	b.nextShape()
}

func (b *Blocks) nextShape() {
	b.shape = 1 + b.deps.Rand.IntN(maxShape)
}

// hasRoom reports whether the current shape fits anywhere on the board.
func (b *Blocks) hasRoom() bool {
	for r := 0; r+b.shape <= GridSize; r++ {
		for c := 0; c+b.shape <= GridSize; c++ {
			if CanPlaceShape(&b.grid, r, c, b.shape) {
				return true
			}
		}
	}
	return false
}

// ensureRoom empties a board the current shape no longer fits on. Place
// count, lives and a pending question carry over.
func (b *Blocks) ensureRoom() {
	if b.hasRoom() {
		return
	}
	b.log.Debug("no room for shape %d, board cleared: place_count=%d", b.shape, b.placeCount)
	b.grid = Grid{}
	b.boardClears++
}

func (b *Blocks) Act(ctx context.Context, a Action) (Feedback, error) {
	switch a.Type {
	case ActionPlace:
		return b.place(ctx, a.Row, a.Col)
	case ActionSubmit:
		return b.submit(ctx, &a.Answer)
	case ActionDontKnow:
		return b.submit(ctx, nil)
	default:
		return Feedback{}, ErrUnsupportedAction
	}
}

func (b *Blocks) place(ctx context.Context, row, col int) (Feedback, error) {
	if b.attempt.IsCompleted {
		return b.feedback(false, false, ""), nil
	}
	if b.showQuestion {
		return b.feedback(false, false, ""), ErrQuestionPending
	}
	if !CanPlaceShape(&b.grid, row, col, b.shape) {
		return b.feedback(false, false, ""), nil
	}

	for r := row; r < row+b.shape; r++ {
		for c := col; c < col+b.shape; c++ {
			b.grid[r][c] = true
		}
	}
	b.linesCleared += b.grid.clearLines()
	b.placeCount++
	b.nextShape()
	b.ensureRoom()

	fb := b.feedback(false, false, "")
	fb.Placed = true
	if b.placeCount%questionGate == 0 && b.total() > 0 {
		b.question = b.cardAt(b.deps.Rand.IntN(b.total()))
		b.showQuestion = true
		b.log.Debug("question surfaced: card_id=%d, place_count=%d", b.question.ID, b.placeCount)
		return fb, nil
	}
	if b.finishIfDone() {
		fb.Completed = true
		return fb, b.commit(ctx)
	}
	return fb, nil
}

// submit answers the pending question; a nil answer is "don't know".
func (b *Blocks) submit(ctx context.Context, answer *string) (Feedback, error) {
	card := b.question
	if !b.showQuestion || card == nil {
		return b.feedback(false, false, ""), nil
	}

	correct := answer != nil &&
		strings.EqualFold(strings.TrimSpace(*answer), strings.TrimSpace(card.Definition))
	b.record(correct, card.ID, answer)

	if correct {
		b.attempt.SetCursor(min(b.attempt.CurrentIndex+1, b.total()))
		b.showQuestion = false
		b.question = nil
		b.finishIfDone()
	} else {
		b.attemptsLeft--
		if b.attemptsLeft <= 0 {
			b.log.Debug("out of attempts, board reset")
			b.resetBoard()
		}
	}
	return b.feedback(true, correct, card.Definition), b.commit(ctx)
}

// finishIfDone completes the attempt once enough blocks were placed and no
// question is pending.
func (b *Blocks) finishIfDone() bool {
	if b.showQuestion || b.placeCount < 2*b.total() {
		return false
	}
	b.attempt.SetCursor(b.total())
	return b.attempt.CheckCompletion(b.total())
}

func (b *Blocks) Back(context.Context) error {
	return ErrUnsupportedAction
}

func (b *Blocks) Reset(ctx context.Context) error {
	err := b.resetAttempt(ctx)
	b.resetBoard()
	b.LoadCurrentCard()
	return err
}

func (b *Blocks) Snapshot() Snapshot {
	s := b.baseSnapshot()
	s.Blocks = &BlocksView{
		Grid:         b.grid,
		ShapeSize:    b.shape,
		PlaceCount:   b.placeCount,
		AttemptsLeft: b.attemptsLeft,
		ShowQuestion: b.showQuestion,
		LinesCleared: b.linesCleared,
		BoardClears:  b.boardClears,
	}
	if b.showQuestion && b.question != nil {
		s.Card = viewOf(b.question, false)
		s.Question = &QuestionView{Type: Written, AttemptsLeft: b.attemptsLeft}
	}
	return s
}
