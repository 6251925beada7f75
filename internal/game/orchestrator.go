// internal/game/orchestrator.go
package game

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/makao/internal/cache"
	"github.com/jason-s-yu/makao/internal/engine"
)

// DefaultTurnDuration bounds how long a participant may sit on their turn.
const DefaultTurnDuration = 30 * time.Second

// Orchestrator applies whole turns to authoritative session state. All
// collaborators are injected; the orchestrator itself holds no ambient
// state beyond its configuration.
type Orchestrator struct {
	Store        *SessionStore
	Scheduler    TurnScheduler
	Notifier     Notifier
	Shuffler     Shuffler
	TurnDuration time.Duration

	// OnSessionEnd is invoked after a termination condition fires, with the
	// final session state, e.g. to archive results. May be nil.
	OnSessionEnd func(s *Session, winner uuid.UUID, scores map[uuid.UUID]int)
}

// NewOrchestrator wires an orchestrator with defaults for any zero fields.
func NewOrchestrator(store *SessionStore, sched TurnScheduler, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		Store:        store,
		Scheduler:    sched,
		Notifier:     notifier,
		Shuffler:     NewShuffler(),
		TurnDuration: DefaultTurnDuration,
	}
}

// ApplyTurn applies one participant's turn.
//
// The whole turn is all-or-nothing: sub-actions mutate a clone of the
// session, and the clone is committed through the store only if every
// sub-action was accepted. Any error leaves the stored session untouched.
//
// The caller must serialize ApplyTurn invocations per session; different
// sessions may be applied fully in parallel.
func (o *Orchestrator) ApplyTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	cur, ok := o.Store.Get(req.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !cur.HasParticipant(req.Actor) || !cur.HasParticipant(req.Target) {
		return nil, ErrParticipantNotFound
	}

	work := cur.Clone()
	reshuffled := false
	skips := 0
	var scores map[uuid.UUID]int

	for _, sub := range req.SubActions {
		switch sub.Kind {
		case SubActionDraw:
			shuffledNow, err := o.applyDraw(work, req.Actor, sub.Card())
			if err != nil {
				return nil, err
			}
			reshuffled = reshuffled || shuffledNow

		case SubActionPlay:
			verdict, shuffledNow, err := o.applyPlay(work, req, sub.Card())
			if err != nil {
				return nil, err
			}
			reshuffled = reshuffled || shuffledNow
			skips += verdict.Skips
		}

		if work.Over {
			break
		}
	}

	if work.endedByCut {
		// Cutting-card termination: score every hand.
		scores = make(map[uuid.UUID]int, len(work.Seats))
		for _, pid := range work.Seats {
			scores[pid] = work.HandValue(pid)
		}
	}

	work.TurnIndex++

	if work.Over {
		o.Store.Delete(work.ID)
		o.Scheduler.Cancel(work.ID)
		log.Printf("session %s: ended on turn %d, winner %s", work.ID, work.TurnIndex, work.Winner)
		if o.OnSessionEnd != nil {
			o.OnSessionEnd(work, work.Winner, scores)
		}
	} else {
		next := req.Target
		for i := 0; i < skips; i++ {
			next = work.SeatAfter(next)
		}
		work.Turn = next
		work.TurnDeadline = time.Now().Add(o.TurnDuration)
		o.Store.Put(work)
		o.Scheduler.Cancel(work.ID)
		o.Scheduler.Start(work.ID, o.TurnDuration)
	}

	o.notifyMove(work, req, reshuffled)
	o.logTurn(ctx, work, req, reshuffled)

	return &TurnResult{
		Session:    work,
		Reshuffled: reshuffled,
		Ended:      work.Over,
		Winner:     work.Winner,
		Scores:     scores,
	}, nil
}

// validateRequest rejects structurally garbled requests before any state is
// touched.
func validateRequest(req TurnRequest) error {
	if req.SessionID == uuid.Nil {
		return &MalformedRequestError{Field: "sessionId"}
	}
	if req.Actor == uuid.Nil {
		return &MalformedRequestError{Field: "actor"}
	}
	if req.Target == uuid.Nil || req.Target == req.Actor {
		return &MalformedRequestError{Field: "target"}
	}
	if len(req.SubActions) == 0 {
		return &MalformedRequestError{Field: "subActions"}
	}
	for _, sub := range req.SubActions {
		if sub.Kind != SubActionDraw && sub.Kind != SubActionPlay {
			return &MalformedRequestError{Field: "subActions.kind"}
		}
		if !sub.Card().Valid() {
			return &MalformedRequestError{Field: "subActions.card"}
		}
	}
	if req.ChosenSuit != engine.SuitNone && !realSuit(req.ChosenSuit) {
		return &MalformedRequestError{Field: "chosenSuit"}
	}
	return nil
}

func realSuit(s engine.Suit) bool {
	switch s {
	case engine.SuitHearts, engine.SuitDiamonds, engine.SuitClubs, engine.SuitSpades:
		return true
	}
	return false
}

// applyDraw moves the claimed card from the top of the draw pile into the
// actor's hand, replenishing first if the pile is low.
func (o *Orchestrator) applyDraw(s *Session, actor uuid.UUID, claimed engine.Card) (bool, error) {
	reshuffled := replenish(s, o.Shuffler)
	if len(s.DrawPile) == 0 {
		return reshuffled, &DeckDesyncError{Claimed: claimed, Empty: true}
	}
	top := s.DrawPile[len(s.DrawPile)-1]
	if top != claimed {
		return reshuffled, &DeckDesyncError{Claimed: claimed, Actual: top}
	}
	s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
	s.Hands[actor] = append(s.Hands[actor], top)
	return reshuffled, nil
}

// applyPlay asks the engine for a verdict on one played card and applies the
// resulting deltas, including the win and cutting-card checks.
func (o *Orchestrator) applyPlay(s *Session, req TurnRequest, card engine.Card) (engine.Verdict, bool, error) {
	var prev *engine.Card
	if len(s.DiscardPile) > 0 {
		active := s.ActiveCard
		prev = &active
	}

	verdict := engine.Evaluate(prev, card, engine.Context{
		PenaltyActive:  s.PendingPenalty > 0,
		LockedSuit:     s.LockedSuit,
		PendingPenalty: s.PendingPenalty,
	})

	reshuffled := false
	switch verdict.Kind {
	case engine.VerdictInvalidMove:
		return verdict, false, &InvalidMoveError{Reason: verdict.Reason}

	case engine.VerdictChooseSuit:
		if req.ChosenSuit == engine.SuitNone {
			return verdict, false, &MalformedRequestError{Field: "chosenSuit"}
		}
		s.LockedSuit = req.ChosenSuit
		s.PendingPenalty = verdict.Weight

	case engine.VerdictApplyPenalty, engine.VerdictTransferPenalty:
		s.LockedSuit = engine.SuitNone
		s.PendingPenalty = verdict.Weight

	case engine.VerdictReducePenalty:
		// The acting player absorbs what their card could not cover.
		s.LockedSuit = engine.SuitNone
		s.PendingPenalty = 0
		for i := 0; i < verdict.DrawCount; i++ {
			if replenish(s, o.Shuffler) {
				reshuffled = true
			}
			if len(s.DrawPile) == 0 {
				break
			}
			top := s.DrawPile[len(s.DrawPile)-1]
			s.DrawPile = s.DrawPile[:len(s.DrawPile)-1]
			s.Hands[req.Actor] = append(s.Hands[req.Actor], top)
		}

	case engine.VerdictPenaltyCanceled:
		s.LockedSuit = engine.SuitNone
		s.PendingPenalty = 0

	case engine.VerdictSkipTurn, engine.VerdictEndTurnNormal:
		s.LockedSuit = engine.SuitNone
	}

	if !s.removeFromHand(req.Actor, card) {
		return verdict, reshuffled, &InvalidMoveError{Reason: "card is not in the actor's hand"}
	}
	s.DiscardPile = append(s.DiscardPile, card)
	s.ActiveCard = card

	if len(s.Hands[req.Actor]) == 1 {
		// Down to the last card: the actor wins and the turn ends here.
		s.Over = true
		s.Winner = req.Actor
		return verdict, reshuffled, nil
	}

	if card == s.CuttingCard {
		s.Over = true
		s.endedByCut = true
		s.Winner = o.lowestHand(s)
	}
	return verdict, reshuffled, nil
}

// lowestHand picks the participant with the strictly lowest hand value;
// seat order breaks ties.
func (o *Orchestrator) lowestHand(s *Session) uuid.UUID {
	winner := s.Seats[0]
	best := s.HandValue(winner)
	for _, pid := range s.Seats[1:] {
		if v := s.HandValue(pid); v < best {
			winner, best = pid, v
		}
	}
	return winner
}

// notifyMove fans the committed turn out to every participant with a
// per-viewer sanitized snapshot.
func (o *Orchestrator) notifyMove(s *Session, req TurnRequest, reshuffled bool) {
	if o.Notifier == nil {
		return
	}
	for _, pid := range s.Seats {
		o.Notifier.Send(pid, MoveMessage{
			Type:       "MOVE",
			SessionID:  s.ID,
			Actor:      req.Actor,
			Target:     req.Target,
			SubActions: req.SubActions,
			ChosenSuit: req.ChosenSuit,
			Reshuffled: reshuffled,
			Session:    s.SnapshotFor(pid),
		})
	}
}

// logTurn publishes an audit record of the committed turn to the Redis queue
// consumed by the historian. Failures are logged, never propagated: auditing
// must not fail a turn.
func (o *Orchestrator) logTurn(ctx context.Context, s *Session, req TurnRequest, reshuffled bool) {
	subActions := make([]map[string]any, 0, len(req.SubActions))
	for _, sub := range req.SubActions {
		subActions = append(subActions, map[string]any{
			"kind": string(sub.Kind),
			"rank": string(sub.Rank),
			"suit": string(sub.Suit),
		})
	}
	rec := cache.TurnRecord{
		SessionID: s.ID,
		TurnIndex: s.TurnIndex,
		Actor:     req.Actor,
		Payload: map[string]any{
			"subActions":     subActions,
			"chosenSuit":     string(req.ChosenSuit),
			"reshuffled":     reshuffled,
			"pendingPenalty": s.PendingPenalty,
			"over":           s.Over,
		},
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := cache.PublishTurnRecord(pubCtx, rec); err != nil {
			log.Printf("session %s: failed to publish turn record %d: %v", s.ID, rec.TurnIndex, err)
		}
	}()
}
