// internal/engine/verdict.go
package engine

// VerdictKind tags the outcome of evaluating a proposed play.
type VerdictKind int

const (
	VerdictInvalidMove VerdictKind = iota
	VerdictChooseSuit
	VerdictApplyPenalty
	VerdictSkipTurn
	VerdictTransferPenalty
	VerdictReducePenalty
	VerdictEndTurnNormal
	VerdictPenaltyCanceled
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictInvalidMove:
		return "invalid_move"
	case VerdictChooseSuit:
		return "choose_suit"
	case VerdictApplyPenalty:
		return "apply_penalty"
	case VerdictSkipTurn:
		return "skip_turn"
	case VerdictTransferPenalty:
		return "transfer_penalty"
	case VerdictReducePenalty:
		return "reduce_penalty"
	case VerdictEndTurnNormal:
		return "end_turn"
	case VerdictPenaltyCanceled:
		return "penalty_canceled"
	}
	return "unknown"
}

// Verdict describes the legality of a play and every state delta the
// orchestrator needs, so no rule is re-derived outside this package.
type Verdict struct {
	Kind VerdictKind

	// Reason is the human-readable rejection for VerdictInvalidMove.
	Reason string

	// Weight is the pending penalty the *next* player inherits for
	// apply/transfer verdicts, and the seeded penalty riding on a joker's
	// choose-suit verdict.
	Weight int

	// Skips is the number of players passed over for VerdictSkipTurn.
	Skips int

	// Remaining and DrawCount describe VerdictReducePenalty: the acting
	// player immediately draws DrawCount cards and Remaining is what was
	// left of the pending penalty after the reduction.
	Remaining int
	DrawCount int

	// RequiresSuit is set on VerdictChooseSuit: the caller must supply the
	// suit that becomes the session's locked suit.
	RequiresSuit bool
}

// Context carries the session-side inputs to Evaluate.
type Context struct {
	// PenaltyActive is true while an uncountered penalty hangs over the
	// acting player.
	PenaltyActive bool

	// LockedSuit is the suit declared by the last Ace/joker play, or
	// SuitNone.
	LockedSuit Suit

	// PendingPenalty is the draw count the acting player owes unless they
	// counter it.
	PendingPenalty int
}
