// internal/database/session.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jason-s-yu/makao/internal/engine"
)

// SessionArchive is the final record of a finished session: the winner, the
// per-participant hand sums and the final hands for replay inspection.
type SessionArchive struct {
	SessionID  uuid.UUID
	Winner     uuid.UUID
	Scores     map[uuid.UUID]int
	FinalHands map[uuid.UUID][]engine.Card
	Turns      int
}

// ArchiveSession persists the outcome of a finished session in one
// transaction: the session row plus one result row per participant.
func ArchiveSession(ctx context.Context, a SessionArchive) error {
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO sessions (id, status, turns)
			VALUES ($1, 'completed', $2)
			ON CONFLICT (id) DO UPDATE SET status = 'completed', turns = $2
		`
		if _, e := tx.Exec(ctx, upsert, a.SessionID, a.Turns); e != nil {
			return e
		}

		for pid, score := range a.Scores {
			hand, e := json.Marshal(a.FinalHands[pid])
			if e != nil {
				return e
			}
			q := `
				INSERT INTO session_results (session_id, participant_id, score, did_win, final_hand)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (session_id, participant_id)
				DO UPDATE SET score = $3, did_win = $4, final_hand = $5
			`
			if _, e := tx.Exec(ctx, q, a.SessionID, pid, score, pid == a.Winner, hand); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx archive session %s: %w", a.SessionID, err)
	}
	return nil
}

// InsertTurnRecords batch-inserts historian turn records. Used by the
// cmd/historian consumer, not the live service.
func InsertTurnRecords(ctx context.Context, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := DB.CopyFrom(ctx,
		pgx.Identifier{"session_turns"},
		[]string{"session_id", "turn_index", "actor", "payload", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy session_turns: %w", err)
	}
	return nil
}

// MarkSessionAbandoned flags a session that stopped producing turn records.
func MarkSessionAbandoned(ctx context.Context, sessionID uuid.UUID) error {
	q := `
		INSERT INTO sessions (id, status)
		VALUES ($1, 'abandoned')
		ON CONFLICT (id) DO UPDATE SET status = 'abandoned'
		WHERE sessions.status <> 'completed'
	`
	if _, err := DB.Exec(ctx, q, sessionID); err != nil {
		return fmt.Errorf("mark session %s abandoned: %w", sessionID, err)
	}
	return nil
}
