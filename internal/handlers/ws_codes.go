// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the session handlers. These provide
// more specific reasons for closure than standard codes.
const (
	CloseCodeBadSubprotocol   websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	CloseCodeInvalidAuthToken websocket.StatusCode = 3001 // Provided auth token was invalid or expired.
	CloseCodeNotSeated        websocket.StatusCode = 3002 // Authenticated participant holds no seat in this session.
	CloseCodeSessionEnded     websocket.StatusCode = 3003 // Session ended while the connection was open.
)
