// internal/game/session_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/makao/internal/engine"
)

func participants(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestNewSessionDealsFullTable(t *testing.T) {
	seats := participants(3)
	s, err := NewSession(SessionConfig{}, seats, NewSeededShuffler(42))
	require.NoError(t, err)

	assert.Equal(t, seats, s.Seats)
	assert.Equal(t, seats[0], s.Turn)
	for _, pid := range seats {
		assert.Len(t, s.Hands[pid], DefaultHandSize)
	}
	require.Len(t, s.DiscardPile, 1)
	assert.Equal(t, s.DiscardPile[0], s.ActiveCard)

	// Every card dealt out of a single 46-card deck, nothing lost.
	assert.Equal(t, 46, s.CardCount())
	assert.Len(t, s.DrawPile, 46-3*DefaultHandSize-1)

	// The default cutting card is drawn from the pile, never a joker.
	assert.True(t, s.CuttingCard.Valid())
	assert.False(t, s.CuttingCard.IsJoker())
}

func TestNewSessionRejectsSoloTable(t *testing.T) {
	_, err := NewSession(SessionConfig{}, participants(1), NewSeededShuffler(1))
	assert.Error(t, err)
}

func TestNewSessionRejectsOversizedDeal(t *testing.T) {
	_, err := NewSession(SessionConfig{HandSize: 20}, participants(3), NewSeededShuffler(1))
	assert.Error(t, err)
}

func TestNewSessionHonorsCuttingCardOverride(t *testing.T) {
	cut := engine.Card{Rank: engine.RankSeven, Suit: engine.SuitClubs}
	s, err := NewSession(SessionConfig{CuttingCard: &cut}, participants(2), NewSeededShuffler(7))
	require.NoError(t, err)
	assert.Equal(t, cut, s.CuttingCard)
}

func TestCloneIsIndependent(t *testing.T) {
	seats := participants(2)
	s, err := NewSession(SessionConfig{}, seats, NewSeededShuffler(3))
	require.NoError(t, err)

	cp := s.Clone()
	cp.DrawPile = cp.DrawPile[:len(cp.DrawPile)-1]
	cp.Hands[seats[0]] = append(cp.Hands[seats[0]], engine.MasterCard)
	cp.PendingPenalty = 9

	assert.Len(t, s.Hands[seats[0]], DefaultHandSize)
	assert.Equal(t, 46, s.CardCount())
	assert.Zero(t, s.PendingPenalty)
}

func TestSeatAfterWrapsAround(t *testing.T) {
	seats := participants(3)
	s := &Session{Seats: seats}

	assert.Equal(t, seats[1], s.SeatAfter(seats[0]))
	assert.Equal(t, seats[0], s.SeatAfter(seats[2]))
}

func TestHandValueSumsCardPoints(t *testing.T) {
	pid := uuid.New()
	s := &Session{Hands: map[uuid.UUID][]engine.Card{
		pid: {
			{Rank: engine.RankSeven, Suit: engine.SuitHearts},   // 7
			{Rank: engine.RankJack, Suit: engine.SuitSpades},    // 11
			{Rank: engine.RankAce, Suit: engine.SuitDiamonds},   // 15
			{Rank: engine.RankJoker, Suit: engine.SuitRedJoker}, // 25
		},
	}}
	assert.Equal(t, 58, s.HandValue(pid))
}

func TestRemoveFromHandTakesSingleInstance(t *testing.T) {
	pid := uuid.New()
	c := engine.Card{Rank: engine.RankFive, Suit: engine.SuitHearts}
	s := &Session{Hands: map[uuid.UUID][]engine.Card{pid: {c}}}

	assert.True(t, s.removeFromHand(pid, c))
	assert.Empty(t, s.Hands[pid])
	assert.False(t, s.removeFromHand(pid, c))
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	s, err := NewSession(SessionConfig{}, participants(2), NewSeededShuffler(5))
	require.NoError(t, err)

	_, ok := store.Get(s.ID)
	assert.False(t, ok)

	store.Put(s)
	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, store.Len())

	store.Delete(s.ID)
	_, ok = store.Get(s.ID)
	assert.False(t, ok)
}
