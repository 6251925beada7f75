// internal/engine/evaluate.go
//
// The move legality and penalty resolution rules for Makao. Evaluate is a
// pure function of its arguments: no session state is read or written here,
// so it is safe to call concurrently and to replay for auditing.
package engine

import "fmt"

// Evaluate decides whether played may be placed on prev under ctx and, if
// so, which state deltas follow. prev is nil only for the opening move of a
// session (empty discard pile).
func Evaluate(prev *Card, played Card, ctx Context) Verdict {
	if prev == nil {
		// Any card may open the session.
		return cardEffect(played, 0)
	}

	if !isLegal(*prev, played, ctx) {
		return Verdict{
			Kind:   VerdictInvalidMove,
			Reason: fmt.Sprintf("cannot play %s on %s", played, *prev),
		}
	}

	if ctx.PenaltyActive && ctx.PendingPenalty > 0 {
		if played.IsMaster() {
			return Verdict{Kind: VerdictPenaltyCanceled}
		}
		if played.IsPenaltyCard() && basicMatch(played, *prev, ctx.LockedSuit) {
			return resolvePenalty(*prev, played, ctx)
		}
		return Verdict{
			Kind:   VerdictInvalidMove,
			Reason: "must play a penalty card or the master card while a penalty is pending",
		}
	}

	return cardEffect(played, 0)
}

// isLegal is the general legality gate. Aces and the master card are
// universal wild plays; everything else must satisfy basicMatch, which
// already folds in the locked suit and joker color rules.
func isLegal(prev, played Card, ctx Context) bool {
	if played.IsMaster() || played.IsAce() {
		return true
	}
	return basicMatch(played, prev, ctx.LockedSuit)
}

// basicMatch reports whether played matches prev by rank, suit or joker
// color. When a locked suit is in force it replaces prev's own rank/suit as
// the matching target.
func basicMatch(played, prev Card, locked Suit) bool {
	if locked != SuitNone {
		if played.Suit == locked {
			return true
		}
		if played.IsJoker() && JokerColorMatches(played, locked) {
			return true
		}
		return prev.IsJoker() && JokerColorMatches(prev, played.Suit)
	}
	if played.Rank == prev.Rank || played.Suit == prev.Suit {
		return true
	}
	if played.IsJoker() && JokerColorMatches(played, prev.Suit) {
		return true
	}
	return prev.IsJoker() && JokerColorMatches(prev, played.Suit)
}

// resolvePenalty applies the penalty stacking algorithm. The branches are
// ordered by precedence; the first match wins.
func resolvePenalty(prev, played Card, ctx Context) Verdict {
	refSuit := ctx.LockedSuit
	if refSuit == SuitNone {
		refSuit = prev.Suit
	}
	playedW := played.PenaltyWeight()

	if prev.IsPenaltyCard() {
		prevW := prev.PenaltyWeight()
		colorMatch := crossColorMatch(prev, played, refSuit)
		switch {
		case prevW == playedW:
			// Equal weight always transfers, never reduces.
			return Verdict{Kind: VerdictTransferPenalty, Weight: playedW}
		case prev.Suit == refSuit && prevW < playedW:
			return Verdict{Kind: VerdictTransferPenalty, Weight: playedW}
		case prev.Suit == refSuit && prevW > playedW:
			return reduceVerdict(ctx.PendingPenalty, playedW)
		case colorMatch && prevW < playedW:
			// Cross-color stacking accumulates instead of replacing.
			return Verdict{Kind: VerdictTransferPenalty, Weight: ctx.PendingPenalty + playedW}
		case colorMatch && prevW > playedW:
			return reduceVerdict(ctx.PendingPenalty, playedW)
		}
	}

	// No stacking relation applies: fall back to the plain card effect and
	// add its base weight on top of the existing pending total.
	return cardEffect(played, ctx.PendingPenalty)
}

// reduceVerdict computes the weaker-on-stronger outcome: the acting player
// absorbs what their card could not cover and draws it immediately.
func reduceVerdict(pending, playedW int) Verdict {
	remaining := pending - playedW
	if remaining < 0 {
		remaining = 0
	}
	return Verdict{Kind: VerdictReducePenalty, Remaining: remaining, DrawCount: remaining}
}

// crossColorMatch reports whether the joker color rule links played to prev
// under the reference suit.
func crossColorMatch(prev, played Card, refSuit Suit) bool {
	if played.IsJoker() {
		return JokerColorMatches(played, refSuit)
	}
	if prev.IsJoker() {
		return JokerColorMatches(prev, played.Suit)
	}
	return false
}

// cardEffect is the plain per-card rule, used when no penalty is being
// countered. carried is any pre-existing pending penalty the new weight
// stacks onto (non-zero only in the fallback branch above).
func cardEffect(played Card, carried int) Verdict {
	if played.IsAce() || played.IsJoker() {
		v := Verdict{Kind: VerdictChooseSuit, RequiresSuit: true}
		if played.IsJoker() {
			v.Weight = carried + JokerPenaltyWeight
		}
		return v
	}
	switch played.Rank {
	case RankTwo:
		return Verdict{Kind: VerdictApplyPenalty, Weight: carried + 2}
	case RankThree:
		return Verdict{Kind: VerdictApplyPenalty, Weight: carried + 3}
	case RankEight, RankJack:
		return Verdict{Kind: VerdictSkipTurn, Skips: 1}
	}
	return Verdict{Kind: VerdictEndTurnNormal}
}
