// internal/game/errors.go
package game

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/makao/internal/engine"
)

var (
	// ErrSessionNotFound is returned when the requested session id has no
	// live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrParticipantNotFound is returned when the actor or target holds no
	// hand in the session.
	ErrParticipantNotFound = errors.New("participant not found in session")
)

// DeckDesyncError signals that a draw sub-action claimed a card that is not
// the true top of the draw pile. The turn is aborted with no mutation; the
// caller should resync and resubmit.
type DeckDesyncError struct {
	Claimed engine.Card
	Actual  engine.Card
	Empty   bool
}

func (e *DeckDesyncError) Error() string {
	if e.Empty {
		return fmt.Sprintf("deck desync: claimed draw of %s but the draw pile is empty", e.Claimed)
	}
	return fmt.Sprintf("deck desync: claimed draw of %s but top of pile is %s", e.Claimed, e.Actual)
}

// InvalidMoveError wraps the engine's rejection reason. The session is left
// exactly as it was before the turn.
type InvalidMoveError struct {
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return "invalid move: " + e.Reason
}

// MalformedRequestError reports a missing or garbled field on a turn request.
type MalformedRequestError struct {
	Field string
}

func (e *MalformedRequestError) Error() string {
	return "malformed request: bad or missing field " + e.Field
}
