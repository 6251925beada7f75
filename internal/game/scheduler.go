// internal/game/scheduler.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TurnScheduler owns the per-session turn-deadline timers. The orchestrator's
// only contract with it is cancel-then-start; what happens on expiry (forced
// pass, forced draw) is the scheduler owner's business, not the core's.
type TurnScheduler interface {
	Start(sessionID uuid.UUID, d time.Duration)
	Cancel(sessionID uuid.UUID)
}

// timerScheduler implements TurnScheduler with one time.Timer per session.
type timerScheduler struct {
	mu       sync.Mutex
	timers   map[uuid.UUID]*time.Timer
	onExpire func(sessionID uuid.UUID)
}

// NewTurnScheduler returns a timer-backed scheduler. onExpire runs on the
// timer goroutine and must not assume any session lock is held.
func NewTurnScheduler(onExpire func(sessionID uuid.UUID)) TurnScheduler {
	return &timerScheduler{
		timers:   make(map[uuid.UUID]*time.Timer),
		onExpire: onExpire,
	}
}

func (ts *timerScheduler) Start(sessionID uuid.UUID, d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[sessionID]; ok {
		t.Stop()
	}
	ts.timers[sessionID] = time.AfterFunc(d, func() {
		ts.mu.Lock()
		delete(ts.timers, sessionID)
		ts.mu.Unlock()
		if ts.onExpire != nil {
			ts.onExpire(sessionID)
		}
	})
}

func (ts *timerScheduler) Cancel(sessionID uuid.UUID) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[sessionID]; ok {
		t.Stop()
		delete(ts.timers, sessionID)
	}
}
