// internal/game/snapshot.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/makao/internal/engine"
)

// SnapshotHand is one participant's hand as seen by a viewer: everyone sees
// the count, only the owner sees the cards.
type SnapshotHand struct {
	ParticipantID uuid.UUID     `json:"participantId"`
	CardCount     int           `json:"cardCount"`
	Cards         []engine.Card `json:"cards,omitempty"`
}

// Snapshot is the sanitized session view sent to clients. Timer handles and
// pile contents never leave the server; only sizes and the active card do.
type Snapshot struct {
	SessionID      uuid.UUID      `json:"sessionId"`
	Turn           uuid.UUID      `json:"turn"`
	TurnDeadline   time.Time      `json:"turnDeadline"`
	ActiveCard     engine.Card    `json:"activeCard"`
	CuttingCard    engine.Card    `json:"cuttingCard"`
	LockedSuit     engine.Suit    `json:"lockedSuit,omitempty"`
	PendingPenalty int            `json:"pendingPenalty"`
	DrawPileSize   int            `json:"drawPileSize"`
	DiscardSize    int            `json:"discardSize"`
	Hands          []SnapshotHand `json:"hands"`
	Over           bool           `json:"over"`
	Winner         uuid.UUID      `json:"winner,omitempty"`
}

// SnapshotFor builds the session view for one viewer, revealing only that
// viewer's own hand.
func (s *Session) SnapshotFor(viewer uuid.UUID) Snapshot {
	snap := Snapshot{
		SessionID:      s.ID,
		Turn:           s.Turn,
		TurnDeadline:   s.TurnDeadline,
		ActiveCard:     s.ActiveCard,
		CuttingCard:    s.CuttingCard,
		LockedSuit:     s.LockedSuit,
		PendingPenalty: s.PendingPenalty,
		DrawPileSize:   len(s.DrawPile),
		DiscardSize:    len(s.DiscardPile),
		Over:           s.Over,
		Winner:         s.Winner,
	}
	snap.Hands = make([]SnapshotHand, 0, len(s.Seats))
	for _, pid := range s.Seats {
		h := SnapshotHand{ParticipantID: pid, CardCount: len(s.Hands[pid])}
		if pid == viewer {
			h.Cards = append([]engine.Card(nil), s.Hands[pid]...)
		}
		snap.Hands = append(snap.Hands, h)
	}
	return snap
}
