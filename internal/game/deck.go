// internal/game/deck.go
package game

import (
	"math/rand"
	"time"

	"github.com/jason-s-yu/makao/internal/engine"
)

// lowWaterMark is the draw-pile size at or below which the discard pile is
// folded back in before a draw.
const lowWaterMark = 5

// Shuffler is the injected randomness collaborator. It mirrors rand.Shuffle
// so tests can substitute a deterministic implementation.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type randShuffler struct {
	r *rand.Rand
}

func (s randShuffler) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// NewShuffler returns a time-seeded Shuffler.
func NewShuffler() Shuffler {
	return randShuffler{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededShuffler returns a Shuffler with a fixed seed, for replays and tests.
func NewSeededShuffler(seed int64) Shuffler {
	return randShuffler{r: rand.New(rand.NewSource(seed))}
}

// NewDeck builds the 46-card Makao deck: ranks 2..10, Jack and Ace in each of
// the four suits, plus the two jokers.
func NewDeck() []engine.Card {
	deck := make([]engine.Card, 0, 46)
	for _, suit := range engine.Suits() {
		for _, rank := range engine.Ranks() {
			deck = append(deck, engine.Card{Rank: rank, Suit: suit})
		}
	}
	deck = append(deck,
		engine.Card{Rank: engine.RankJoker, Suit: engine.SuitRedJoker},
		engine.Card{Rank: engine.RankJoker, Suit: engine.SuitBlackJoker},
	)
	return deck
}

// replenish folds the discard pile back under the draw pile when the draw
// pile is running low. The single most recent discard stays in place as the
// active card; everything else is shuffled and slid beneath the remaining
// draw pile, so cards already in the pile stay immediately drawable.
// Returns true if a reshuffle happened.
func replenish(s *Session, sh Shuffler) bool {
	if len(s.DrawPile) > lowWaterMark || len(s.DiscardPile) <= 1 {
		return false
	}
	top := s.DiscardPile[len(s.DiscardPile)-1]
	rest := append([]engine.Card(nil), s.DiscardPile[:len(s.DiscardPile)-1]...)
	sh.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })

	s.DrawPile = append(rest, s.DrawPile...)
	s.DiscardPile = []engine.Card{top}
	s.ActiveCard = top
	return true
}
