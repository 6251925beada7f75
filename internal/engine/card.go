// internal/engine/card.go
package engine

import "fmt"

// Suit identifies one of the four French suits or a joker color.
type Suit string

const (
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
	SuitSpades   Suit = "S"
	SuitRedJoker Suit = "R"
	SuitBlackJoker Suit = "B"

	// SuitNone is the zero value used for an unset locked suit.
	SuitNone Suit = ""
)

// Rank identifies a card rank. The Makao deck uses 2..10, Jack and Ace
// from each suit, plus the two jokers.
type Rank string

const (
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankAce   Rank = "A"
	RankJoker Rank = "O"
)

// JokerPenaltyWeight is the draw count a joker forces on the next player.
// It is a rules constant, distinct from any numeral encoding on the wire.
const JokerPenaltyWeight = 5

// Card is an immutable rank/suit pair. Two cards are equal iff both fields
// match, so plain == comparison is the identity check.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// MasterCard is the Ace of Spades: always legal to play, always legal to
// play on, and cancels any pending penalty.
var MasterCard = Card{Rank: RankAce, Suit: SuitSpades}

// Suits returns the four real suits, in display order.
func Suits() []Suit {
	return []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
}

// Ranks returns every non-joker rank, in ascending order.
func Ranks() []Rank {
	return []Rank{RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
		RankEight, RankNine, RankTen, RankJack, RankAce}
}

func (c Card) String() string {
	if c.IsJoker() {
		if c.Suit == SuitRedJoker {
			return "red joker"
		}
		return "black joker"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsMaster reports whether c is the Ace of Spades.
func (c Card) IsMaster() bool {
	return c == MasterCard
}

// IsAce reports whether c is an Ace of any suit.
func (c Card) IsAce() bool {
	return c.Rank == RankAce
}

// IsJoker reports whether c is either joker.
func (c Card) IsJoker() bool {
	return c.Suit == SuitRedJoker || c.Suit == SuitBlackJoker
}

// IsPenaltyCard reports whether playing c forces draws on the next player:
// the 2s, the 3s and both jokers.
func (c Card) IsPenaltyCard() bool {
	return c.Rank == RankTwo || c.Rank == RankThree || c.IsJoker()
}

// PenaltyWeight returns the draw count c carries: its numeral rank for 2/3,
// the fixed joker weight for jokers, and 0 for everything else.
func (c Card) PenaltyWeight() int {
	switch {
	case c.IsJoker():
		return JokerPenaltyWeight
	case c.Rank == RankTwo:
		return 2
	case c.Rank == RankThree:
		return 3
	}
	return 0
}

// Value returns the point value of c for cutting-card hand scoring.
func (c Card) Value() int {
	switch c.Rank {
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	case RankTen:
		return 10
	case RankJack:
		return 11
	case RankAce:
		return 15
	case RankJoker:
		return 25
	}
	return 0
}

// Valid reports whether c is a well-formed member of the Makao deck.
// Used to reject malformed wire input before it reaches the rules.
func (c Card) Valid() bool {
	if c.IsJoker() {
		return c.Rank == RankJoker
	}
	switch c.Suit {
	case SuitHearts, SuitDiamonds, SuitClubs, SuitSpades:
	default:
		return false
	}
	for _, r := range Ranks() {
		if c.Rank == r {
			return true
		}
	}
	return false
}

// JokerColorMatches reports whether a joker stands in for the target suit:
// the red joker covers Hearts and Diamonds, the black joker Clubs and Spades.
func JokerColorMatches(joker Card, target Suit) bool {
	switch joker.Suit {
	case SuitRedJoker:
		return target == SuitHearts || target == SuitDiamonds
	case SuitBlackJoker:
		return target == SuitClubs || target == SuitSpades
	}
	return false
}
