// internal/handlers/registry.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single WebSocket write so one stalled client cannot
// hold up delivery to the rest of the table.
const writeTimeout = 3 * time.Second

// ConnRegistry maps participants to their live WebSocket connections. It
// implements game.Notifier: the orchestrator addresses individual
// participants and the registry handles delivery.
type ConnRegistry struct {
	logger *logrus.Logger

	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

func NewConnRegistry(logger *logrus.Logger) *ConnRegistry {
	return &ConnRegistry{
		logger: logger,
		conns:  make(map[uuid.UUID]*websocket.Conn),
	}
}

// Register replaces any previous connection for the participant. The old
// connection, if any, is closed so stale readers drain out.
func (r *ConnRegistry) Register(participantID uuid.UUID, c *websocket.Conn) {
	r.mu.Lock()
	old := r.conns[participantID]
	r.conns[participantID] = c
	r.mu.Unlock()

	if old != nil && old != c {
		old.Close(websocket.StatusPolicyViolation, "superseded by a newer connection")
	}
}

// Unregister removes the participant's connection, but only if it is still
// the one being torn down. A reconnect may have replaced it already.
func (r *ConnRegistry) Unregister(participantID uuid.UUID, c *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[participantID] == c {
		delete(r.conns, participantID)
	}
}

// Send marshals the message and writes it to the participant's connection
// asynchronously. Disconnected participants are silently skipped; they catch
// up from the snapshot sent on reconnect.
func (r *ConnRegistry) Send(participantID uuid.UUID, message any) {
	r.mu.Lock()
	c := r.conns[participantID]
	r.mu.Unlock()
	if c == nil {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		r.logger.Errorf("failed to marshal message for participant %s: %v", participantID, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			r.logger.Warnf("failed to write to participant %s: %v", participantID, err)
		}
	}()
}
