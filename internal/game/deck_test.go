// internal/game/deck_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/makao/internal/engine"
)

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	require.Len(t, deck, 46)

	seen := make(map[engine.Card]bool, len(deck))
	jokers := 0
	for _, c := range deck {
		assert.True(t, c.Valid(), "deck contains invalid card %s", c)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
		if c.IsJoker() {
			jokers++
		}
	}
	assert.Equal(t, 2, jokers)
	assert.True(t, seen[engine.MasterCard])
}

func TestReplenishFoldsDiscardUnderDrawPile(t *testing.T) {
	// Draw pile of 4 (at the low-water mark), discard pile of 6.
	draw := []engine.Card{
		{Rank: engine.RankTwo, Suit: engine.SuitHearts},
		{Rank: engine.RankThree, Suit: engine.SuitHearts},
		{Rank: engine.RankFour, Suit: engine.SuitHearts},
		{Rank: engine.RankFive, Suit: engine.SuitHearts},
	}
	discard := []engine.Card{
		{Rank: engine.RankSix, Suit: engine.SuitSpades},
		{Rank: engine.RankSeven, Suit: engine.SuitSpades},
		{Rank: engine.RankEight, Suit: engine.SuitSpades},
		{Rank: engine.RankNine, Suit: engine.SuitSpades},
		{Rank: engine.RankTen, Suit: engine.SuitSpades},
		{Rank: engine.RankJack, Suit: engine.SuitSpades},
	}
	s := &Session{
		DrawPile:    append([]engine.Card(nil), draw...),
		DiscardPile: append([]engine.Card(nil), discard...),
		ActiveCard:  discard[len(discard)-1],
	}

	require.True(t, replenish(s, NewSeededShuffler(1)))

	assert.Len(t, s.DrawPile, 9)
	require.Len(t, s.DiscardPile, 1)

	// The active card stays in place.
	assert.Equal(t, discard[len(discard)-1], s.DiscardPile[0])
	assert.Equal(t, discard[len(discard)-1], s.ActiveCard)

	// The cards already in the draw pile stay on top, in order, so the next
	// draws are unaffected by the reshuffle.
	assert.Equal(t, draw, s.DrawPile[len(s.DrawPile)-len(draw):])

	// Conservation: the folded-in cards are exactly the old discard body.
	folded := map[engine.Card]int{}
	for _, c := range s.DrawPile[:5] {
		folded[c]++
	}
	for _, c := range discard[:5] {
		assert.Equal(t, 1, folded[c], "card %s missing after fold", c)
	}
}

func TestReplenishSkippedWhenPileIsHealthy(t *testing.T) {
	s := &Session{
		DrawPile:    NewDeck()[:10],
		DiscardPile: []engine.Card{{Rank: engine.RankSix, Suit: engine.SuitSpades}, {Rank: engine.RankSeven, Suit: engine.SuitSpades}},
	}
	assert.False(t, replenish(s, NewSeededShuffler(1)))
	assert.Len(t, s.DrawPile, 10)
}

func TestReplenishSkippedWithoutSpareDiscards(t *testing.T) {
	// Only the active card is on the discard pile; nothing to fold in.
	s := &Session{
		DrawPile:    []engine.Card{{Rank: engine.RankTwo, Suit: engine.SuitHearts}},
		DiscardPile: []engine.Card{{Rank: engine.RankSix, Suit: engine.SuitSpades}},
		ActiveCard:  engine.Card{Rank: engine.RankSix, Suit: engine.SuitSpades},
	}
	assert.False(t, replenish(s, NewSeededShuffler(1)))
	assert.Len(t, s.DrawPile, 1)
	assert.Len(t, s.DiscardPile, 1)
}
