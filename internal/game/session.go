// internal/game/session.go
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/makao/internal/engine"
)

// DefaultHandSize is the number of cards dealt to each participant.
const DefaultHandSize = 5

// Session is the authoritative mutable aggregate for one game. Every card in
// play lives in exactly one of Hands, DrawPile or DiscardPile at all times.
//
// Turns must be applied one at a time per session; the orchestrator mutates a
// clone and commits it through the store, so concurrent submissions for the
// same session have to be serialized by the transport layer.
type Session struct {
	ID uuid.UUID

	// Seats is the fixed seating order; it drives skip handoff and the
	// cutting-card tie-break.
	Seats []uuid.UUID

	// Hands maps participant id to their cards. Order within a hand is
	// irrelevant to the rules but kept stable for display.
	Hands map[uuid.UUID][]engine.Card

	// DrawPile is a stack: the end of the slice is the drawable top.
	DrawPile []engine.Card

	// DiscardPile holds played cards; the end of the slice is the active card.
	DiscardPile []engine.Card

	// ActiveCard mirrors the discard top. Kept explicit because suit/rank
	// checks are hot-path.
	ActiveCard engine.Card

	// CuttingCard is designated at creation; playing its exact rank and suit
	// ends the session by lowest-hand-value comparison.
	CuttingCard engine.Card

	// LockedSuit is the suit declared by the last Ace/joker play, or SuitNone.
	LockedSuit engine.Suit

	// PendingPenalty is the draw count the next player owes unless countered.
	PendingPenalty int

	// Turn is the participant whose move is expected.
	Turn         uuid.UUID
	TurnDeadline time.Time

	// TurnIndex increments once per applied turn, for audit ordering.
	TurnIndex int

	// Over and Winner are set when a termination condition fires.
	Over   bool
	Winner uuid.UUID

	// endedByCut distinguishes a cutting-card termination (scored by hand
	// sums) from a win by emptied hand.
	endedByCut bool
}

// SessionConfig carries the tunables fixed at session creation.
type SessionConfig struct {
	HandSize int

	// CuttingCard overrides the default designation (the bottom non-joker of
	// the freshly shuffled draw pile) when non-nil.
	CuttingCard *engine.Card
}

// NewSession builds a session with a fully shuffled draw pile, one card
// flipped to the discard pile as the opening active card, and a fixed hand
// dealt to every participant in seat order.
func NewSession(cfg SessionConfig, participants []uuid.UUID, sh Shuffler) (*Session, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("session needs at least 2 participants, got %d", len(participants))
	}
	handSize := cfg.HandSize
	if handSize <= 0 {
		handSize = DefaultHandSize
	}

	pile := NewDeck()
	if need := len(participants)*handSize + 1; need > len(pile) {
		return nil, fmt.Errorf("cannot deal %d cards to %d participants from a %d-card deck",
			handSize, len(participants), len(pile))
	}
	sh.Shuffle(len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })

	s := &Session{
		ID:    uuid.New(),
		Seats: append([]uuid.UUID(nil), participants...),
		Hands: make(map[uuid.UUID][]engine.Card, len(participants)),
	}

	for _, pid := range s.Seats {
		hand := make([]engine.Card, handSize)
		copy(hand, pile[len(pile)-handSize:])
		pile = pile[:len(pile)-handSize]
		s.Hands[pid] = hand
	}

	// Flip the opening active card.
	opening := pile[len(pile)-1]
	pile = pile[:len(pile)-1]
	s.DiscardPile = []engine.Card{opening}
	s.ActiveCard = opening
	s.DrawPile = pile

	if cfg.CuttingCard != nil {
		s.CuttingCard = *cfg.CuttingCard
	} else {
		s.CuttingCard = defaultCuttingCard(s.DrawPile)
	}

	s.Turn = s.Seats[0]
	return s, nil
}

// defaultCuttingCard designates the lowest non-joker card of the shuffled
// pile, so the designation is random but derived from the same shuffle.
func defaultCuttingCard(pile []engine.Card) engine.Card {
	for _, c := range pile {
		if !c.IsJoker() {
			return c
		}
	}
	// 44 of 46 cards are non-jokers; a joker-only pile cannot happen with a
	// full deck, but fall back to the master card rather than a zero value.
	return engine.MasterCard
}

// Clone deep-copies the session so a turn can be applied all-or-nothing.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Seats = append([]uuid.UUID(nil), s.Seats...)
	cp.DrawPile = append([]engine.Card(nil), s.DrawPile...)
	cp.DiscardPile = append([]engine.Card(nil), s.DiscardPile...)
	cp.Hands = make(map[uuid.UUID][]engine.Card, len(s.Hands))
	for pid, hand := range s.Hands {
		cp.Hands[pid] = append([]engine.Card(nil), hand...)
	}
	return &cp
}

// HasParticipant reports whether pid holds a hand in this session.
func (s *Session) HasParticipant(pid uuid.UUID) bool {
	_, ok := s.Hands[pid]
	return ok
}

// SeatAfter returns the participant seated after pid, wrapping around.
func (s *Session) SeatAfter(pid uuid.UUID) uuid.UUID {
	for i, seat := range s.Seats {
		if seat == pid {
			return s.Seats[(i+1)%len(s.Seats)]
		}
	}
	return pid
}

// HandValue sums the point values of pid's current hand.
func (s *Session) HandValue(pid uuid.UUID) int {
	sum := 0
	for _, c := range s.Hands[pid] {
		sum += c.Value()
	}
	return sum
}

// CardCount returns the total number of cards across hands and both piles.
// The deck conservation invariant keeps this constant for a session's life.
func (s *Session) CardCount() int {
	n := len(s.DrawPile) + len(s.DiscardPile)
	for _, hand := range s.Hands {
		n += len(hand)
	}
	return n
}

// removeFromHand takes one instance of card out of pid's hand. Returns false
// if the participant does not hold it.
func (s *Session) removeFromHand(pid uuid.UUID, card engine.Card) bool {
	hand := s.Hands[pid]
	for i, c := range hand {
		if c == card {
			s.Hands[pid] = append(hand[:i], hand[i+1:]...)
			return true
		}
	}
	return false
}
