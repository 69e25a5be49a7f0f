package game

import (
	"math/rand/v2"

	"github.com/vytor/cosmosquiz/internal/models"
)

const optionCount = 4

// choiceOptions returns the definition of deck[idx] and up to three
// distractor definitions drawn without replacement from the other cards,
// shuffled. Distractors never repeat a text already in the set.
func choiceOptions(r *rand.Rand, deck []models.Card, idx int) []string {
	correct := deck[idx].Definition
	opts := []string{correct}
	seen := map[string]bool{correct: true}
	for _, d := range distractors(r, deck, idx) {
		if len(opts) == optionCount {
			break
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		opts = append(opts, d)
	}
	r.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}

// distractors returns the definitions of every card except deck[idx] in
// random order.
func distractors(r *rand.Rand, deck []models.Card, idx int) []string {
	out := make([]string, 0, len(deck))
	for i, c := range deck {
		if i != idx {
			out = append(out, c.Definition)
		}
	}
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// wrongDefinition picks a definition different from deck[idx]'s, or returns
// false when the deck has none.
func wrongDefinition(r *rand.Rand, deck []models.Card, idx int) (string, bool) {
	correct := deck[idx].Definition
	for _, d := range distractors(r, deck, idx) {
		if d != correct {
			return d, true
		}
	}
	return "", false
}
