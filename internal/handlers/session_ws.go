// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/makao/internal/engine"
	"github.com/jason-s-yu/makao/internal/game"
)

// sessionMessage is the envelope for incoming WebSocket messages. TURN
// messages carry the turn request fields inline.
type sessionMessage struct {
	Type string `json:"type"`

	Target     uuid.UUID        `json:"target,omitempty"`
	SubActions []game.SubAction `json:"subActions,omitempty"`
	ChosenSuit engine.Suit      `json:"chosenSuit,omitempty"`
}

// stateMessage is the private snapshot sent to a participant on connect.
type stateMessage struct {
	Type    string        `json:"type"` // always "STATE"
	Session game.Snapshot `json:"session"`
}

// SessionWSHandler upgrades the connection for a session at
// /session/ws/{session_id}, authenticates the participant, verifies seat
// membership, syncs their private view and runs the read loop.
func SessionWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/session/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "Missing session_id in path (/session/ws/{session_id})", http.StatusBadRequest)
			return
		}
		sessionID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "Invalid session_id format", http.StatusBadRequest)
			return
		}

		s, ok := gs.Sessions.Get(sessionID)
		if !ok {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if s.Over {
			http.Error(w, "Session has already ended", http.StatusGone)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"makao"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for session %s: %v", sessionID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "makao" {
			logger.Warnf("Client for session %s connected with invalid subprotocol: %s", sessionID, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'makao' subprotocol.")
			return
		}

		participantID, err := EnsureParticipant(w, r)
		if err != nil {
			logger.Warnf("Participant authentication failed for session %s: %v", sessionID, err)
			c.Close(websocket.StatusPolicyViolation, "Authentication failed.")
			return
		}
		if !s.HasParticipant(participantID) {
			logger.Warnf("Participant %s is not seated in session %s. Closing connection.", participantID, sessionID)
			c.Close(CloseCodeNotSeated, "You are not a participant in this session.")
			return
		}
		logger.Infof("Participant %s connected to session %s from %s", participantID, sessionID, r.RemoteAddr)

		gs.Registry.Register(participantID, c)
		defer gs.Registry.Unregister(participantID, c)

		// Private state sync: the connecting participant sees their own hand,
		// everyone else's as counts.
		gs.Registry.Send(participantID, stateMessage{Type: "STATE", Session: s.SnapshotFor(participantID)})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readSessionMessages(ctx, c, gs, sessionID, participantID, logger)
		logger.Infof("Participant %s read loop exited for session %s.", participantID, sessionID)
	}
}

// readSessionMessages reads client messages until the connection closes,
// routing TURN messages into the orchestrator.
func readSessionMessages(ctx context.Context, c *websocket.Conn, gs *GameServer, sessionID, participantID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for participant %s in session %s.", participantID, sessionID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for participant %s in session %s.", participantID, sessionID)
			} else {
				logger.Warnf("Error reading from WebSocket for participant %s in session %s: %v", participantID, sessionID, err)
			}
			return
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message from participant %s in session %s. Ignoring.", participantID, sessionID)
			continue
		}

		var msg sessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from participant %s in session %s: %v", participantID, sessionID, err)
			sendWsError(c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "TURN":
			handleTurnMessage(ctx, c, gs, sessionID, participantID, msg, logger)
		case "ping":
			sendWsMessage(c, map[string]string{"type": "pong"})
		default:
			logger.Warnf("Unknown message type %q from participant %s in session %s.", msg.Type, participantID, sessionID)
			sendWsError(c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// handleTurnMessage checks the sender's turn, applies the request and maps
// rejections to ERROR responses. The committed MOVE fan-out happens inside
// the orchestrator.
func handleTurnMessage(ctx context.Context, c *websocket.Conn, gs *GameServer, sessionID, participantID uuid.UUID, msg sessionMessage, logger *logrus.Logger) {
	s, ok := gs.Sessions.Get(sessionID)
	if !ok {
		sendWsError(c, "session not found")
		return
	}
	if s.Turn != participantID {
		sendWsError(c, "it is not your turn")
		return
	}

	req := game.TurnRequest{
		SessionID:  sessionID,
		Actor:      participantID,
		Target:     msg.Target,
		SubActions: msg.SubActions,
		ChosenSuit: msg.ChosenSuit,
	}
	if _, err := gs.ApplyTurn(ctx, req); err != nil {
		logger.Infof("Rejected turn from participant %s in session %s: %v", participantID, sessionID, err)
		sendWsError(c, rejectionMessage(err))
	}
}

// rejectionMessage maps orchestrator errors to client-facing text.
func rejectionMessage(err error) string {
	var invalid *game.InvalidMoveError
	if errors.As(err, &invalid) {
		return invalid.Reason
	}
	var malformed *game.MalformedRequestError
	if errors.As(err, &malformed) {
		return fmt.Sprintf("malformed request: %s", malformed.Field)
	}
	var desync *game.DeckDesyncError
	if errors.As(err, &desync) {
		return err.Error()
	}
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, game.ErrParticipantNotFound):
		return "participant is not seated in this session"
	}
	return err.Error()
}

// sendWsMessage marshals a message and writes it with a bounded timeout.
func sendWsMessage(c *websocket.Conn, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		status := websocket.CloseStatus(err)
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
			logrus.Warnf("Error writing WebSocket message: %v", err)
		}
	}
}

// sendWsError sends a structured ERROR message to the client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, game.ErrorMessage{Type: "ERROR", Message: errorMsg})
}
