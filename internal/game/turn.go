// internal/game/turn.go
package game

import (
	"github.com/google/uuid"

	"github.com/jason-s-yu/makao/internal/engine"
)

// SubActionKind distinguishes the two sub-action kinds inside one turn.
type SubActionKind string

const (
	SubActionDraw SubActionKind = "DRAW"
	SubActionPlay SubActionKind = "PLAY"
)

// SubAction is one draw or play step. Draws name the card the client believes
// sits on top of the pile; plays name the card leaving the actor's hand.
type SubAction struct {
	Kind SubActionKind `json:"kind"`
	Rank engine.Rank   `json:"rank"`
	Suit engine.Suit   `json:"suit"`
}

// Card returns the rank/suit pair named by the sub-action.
func (a SubAction) Card() engine.Card {
	return engine.Card{Rank: a.Rank, Suit: a.Suit}
}

// TurnRequest is one participant's complete turn, applied atomically.
type TurnRequest struct {
	SessionID  uuid.UUID   `json:"sessionId"`
	Actor      uuid.UUID   `json:"actor"`
	Target     uuid.UUID   `json:"target"`
	SubActions []SubAction `json:"subActions"`

	// ChosenSuit must accompany a turn that plays an Ace or joker.
	ChosenSuit engine.Suit `json:"chosenSuit,omitempty"`
}

// TurnResult reports the committed outcome of a turn.
type TurnResult struct {
	Session    *Session
	Reshuffled bool
	Ended      bool
	Winner     uuid.UUID
	Scores     map[uuid.UUID]int // cutting-card hand sums; nil otherwise
}

// Notifier delivers a message to one participant. Broadcast fan-out lives in
// the transport layer; the orchestrator only addresses individuals so each
// viewer can receive their own sanitized snapshot.
type Notifier interface {
	Send(participantID uuid.UUID, message any)
}

// MoveMessage is the wire notification emitted after a committed turn.
type MoveMessage struct {
	Type       string      `json:"type"` // always "MOVE"
	SessionID  uuid.UUID   `json:"sessionId"`
	Actor      uuid.UUID   `json:"actor"`
	Target     uuid.UUID   `json:"target"`
	SubActions []SubAction `json:"subActions"`
	ChosenSuit engine.Suit `json:"chosenSuit,omitempty"`
	Reshuffled bool        `json:"reshuffled"`
	Session    Snapshot    `json:"session"`
}

// ErrorMessage is the wire shape for rejected requests.
type ErrorMessage struct {
	Type    string `json:"type"` // always "ERROR"
	Message string `json:"message"`
}
