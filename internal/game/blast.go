package game

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/vytor/cosmosquiz/internal/models"
)

// Target is a tappable option placed on the unit square.
type Target struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

const (
	relaxFactor = 0.75
	relaxBudget = 4
)

// Blast scatters the options of each card across the play field and walks the
// deck like Flashcards.
type Blast struct {
	*session
	minDistance float64
	maxTries    int

	current *models.Card
	targets []Target
}

func (b *Blast) LoadCurrentCard() {
	b.targets = nil
	idx := b.attempt.CurrentIndex
	b.current = b.cardAt(idx)
	if b.current == nil {
		b.checkLinear()
		return
	}
	opts := choiceOptions(b.deps.Rand, b.quiz.Cards, idx)
	points := scatter(b.deps.Rand, len(opts), b.minDistance, b.maxTries)
	b.targets = make([]Target, len(opts))
	for i, text := range opts {
		b.targets[i] = Target{Text: text, X: points[i][0], Y: points[i][1]}
	}
}

// scatter places n points in [0,1)² at least minDist apart. When a point
// cannot be placed within maxTries the distance is relaxed; after the relax
// budget the last candidate is kept, so scatter always terminates.
func scatter(r *rand.Rand, n int, minDist float64, maxTries int) [][2]float64 {
	points := make([][2]float64, 0, n)
	for len(points) < n {
		dist := minDist
		var candidate [2]float64
		placed := false
		for round := 0; round <= relaxBudget && !placed; round++ {
			for try := 0; try < maxTries; try++ {
				candidate = [2]float64{r.Float64(), r.Float64()}
				if farEnough(points, candidate, dist) {
					placed = true
					break
				}
			}
			dist *= relaxFactor
		}
		points = append(points, candidate)
	}
	return points
}

func farEnough(points [][2]float64, p [2]float64, dist float64) bool {
	for _, q := range points {
		if math.Hypot(p[0]-q[0], p[1]-q[1]) < dist {
			return false
		}
	}
	return true
}

func (b *Blast) Act(ctx context.Context, a Action) (Feedback, error) {
	if a.Type != ActionTap && a.Type != ActionSelect {
		return Feedback{}, ErrUnsupportedAction
	}
	card := b.current
	if card == nil {
		return b.feedback(false, false, ""), nil
	}
	correct := a.Answer == card.Definition
	b.record(correct, card.ID, &a.Answer)
	b.checkLinear()
	err := b.commit(ctx)
	b.LoadCurrentCard()
	return b.feedback(true, correct, card.Definition), err
}

func (b *Blast) Back(ctx context.Context) error {
	err := b.stepBack(ctx)
	b.LoadCurrentCard()
	return err
}

func (b *Blast) Reset(ctx context.Context) error {
	err := b.resetAttempt(ctx)
	b.LoadCurrentCard()
	return err
}

func (b *Blast) Snapshot() Snapshot {
	s := b.baseSnapshot()
	s.Card = viewOf(b.current, false)
	s.Targets = append([]Target(nil), b.targets...)
	return s
}
