// internal/handlers/server.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/makao/internal/database"
	"github.com/jason-s-yu/makao/internal/engine"
	"github.com/jason-s-yu/makao/internal/game"
)

// GameServer owns the live session store, the turn orchestrator and the
// participant connection registry, and serializes turn application per
// session as the orchestrator requires.
type GameServer struct {
	Logger   *logrus.Logger
	Sessions *game.SessionStore
	Sched    game.TurnScheduler
	Orch     *game.Orchestrator
	Registry *ConnRegistry

	mu        sync.Mutex
	turnLocks map[uuid.UUID]*sync.Mutex
}

// NewGameServer wires the store, scheduler, registry and orchestrator
// together.
func NewGameServer(logger *logrus.Logger) *GameServer {
	gs := &GameServer{
		Logger:    logger,
		Sessions:  game.NewSessionStore(),
		Registry:  NewConnRegistry(logger),
		turnLocks: make(map[uuid.UUID]*sync.Mutex),
	}
	gs.Sched = game.NewTurnScheduler(gs.handleTurnExpiry)
	gs.Orch = game.NewOrchestrator(gs.Sessions, gs.Sched, gs.Registry)
	gs.Orch.OnSessionEnd = gs.archiveSession
	return gs
}

// turnLock returns the per-session mutex that serializes ApplyTurn.
func (gs *GameServer) turnLock(sessionID uuid.UUID) *sync.Mutex {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	l, ok := gs.turnLocks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		gs.turnLocks[sessionID] = l
	}
	return l
}

func (gs *GameServer) dropTurnLock(sessionID uuid.UUID) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	delete(gs.turnLocks, sessionID)
}

// ApplyTurn serializes orchestrator calls for one session.
func (gs *GameServer) ApplyTurn(ctx context.Context, req game.TurnRequest) (*game.TurnResult, error) {
	l := gs.turnLock(req.SessionID)
	l.Lock()
	defer l.Unlock()
	res, err := gs.Orch.ApplyTurn(ctx, req)
	if err == nil && res.Ended {
		gs.dropTurnLock(req.SessionID)
	}
	return res, err
}

// handleTurnExpiry runs when a participant sits past the turn deadline. The
// expired turn is forfeited: the turn passes to the next seat and the clock
// restarts.
func (gs *GameServer) handleTurnExpiry(sessionID uuid.UUID) {
	l := gs.turnLock(sessionID)
	l.Lock()
	defer l.Unlock()

	s, ok := gs.Sessions.Get(sessionID)
	if !ok {
		return
	}
	expired := s.Turn
	work := s.Clone()
	work.Turn = work.SeatAfter(expired)
	work.TurnDeadline = time.Now().Add(gs.Orch.TurnDuration)
	gs.Sessions.Put(work)
	gs.Sched.Start(sessionID, gs.Orch.TurnDuration)

	gs.Logger.Warnf("session %s: participant %s timed out, passing to %s", sessionID, expired, work.Turn)
	for _, pid := range work.Seats {
		gs.Registry.Send(pid, game.MoveMessage{
			Type:      "MOVE",
			SessionID: sessionID,
			Actor:     expired,
			Target:    work.Turn,
			Session:   work.SnapshotFor(pid),
		})
	}
}

// archiveSession persists a finished session. Best-effort: the game outcome
// already reached the players, so archive failures are only logged.
func (gs *GameServer) archiveSession(s *game.Session, winner uuid.UUID, scores map[uuid.UUID]int) {
	gs.dropTurnLock(s.ID)
	if database.DB == nil {
		return
	}
	if scores == nil {
		scores = make(map[uuid.UUID]int, len(s.Seats))
		for _, pid := range s.Seats {
			scores[pid] = s.HandValue(pid)
		}
	}
	finalHands := make(map[uuid.UUID][]engine.Card, len(s.Seats))
	for _, pid := range s.Seats {
		finalHands[pid] = s.Hands[pid]
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := database.ArchiveSession(ctx, database.SessionArchive{
			SessionID:  s.ID,
			Winner:     winner,
			Scores:     scores,
			FinalHands: finalHands,
			Turns:      s.TurnIndex,
		})
		if err != nil {
			gs.Logger.Errorf("failed to archive session %s: %v", s.ID, err)
		}
	}()
}

// createSessionRequest is the JSON body of POST /session/create.
type createSessionRequest struct {
	Participants []uuid.UUID  `json:"participants"`
	HandSize     int          `json:"handSize,omitempty"`
	CuttingCard  *engine.Card `json:"cuttingCard,omitempty"`
}

// CreateSessionHandler creates a session for a fixed set of participants and
// starts the first turn's clock.
func CreateSessionHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.CuttingCard != nil && !req.CuttingCard.Valid() {
			writeJSONError(w, http.StatusBadRequest, "invalid cutting card")
			return
		}

		s, err := game.NewSession(game.SessionConfig{
			HandSize:    req.HandSize,
			CuttingCard: req.CuttingCard,
		}, req.Participants, gs.Orch.Shuffler)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.TurnDeadline = time.Now().Add(gs.Orch.TurnDuration)
		gs.Sessions.Put(s)
		gs.Sched.Start(s.ID, gs.Orch.TurnDuration)
		gs.Logger.Infof("created session %s with %d participants", s.ID, len(s.Seats))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"sessionId": s.ID,
			"session":   s.SnapshotFor(uuid.Nil),
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(game.ErrorMessage{Type: "ERROR", Message: msg})
}
