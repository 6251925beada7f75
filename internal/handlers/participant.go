// internal/handlers/participant.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jason-s-yu/makao/internal/auth"
)

// EnsureParticipant resolves the caller's participant identity from the
// auth_token cookie. Callers without a valid token get a fresh guest
// identity, with the signed token set as a cookie on the response.
func EnsureParticipant(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	token := extractTokenFromCookie(r.Header.Get("Cookie"))
	if token != "" {
		if idStr, err := auth.AuthenticateJWT(token); err == nil {
			if id, err := uuid.Parse(idStr); err == nil {
				return id, nil
			}
		}
	}

	id := uuid.New()
	newToken, err := auth.CreateJWT(id.String())
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    newToken,
		HttpOnly: true,
		Path:     "/",
	})
	return id, nil
}

// GuestHandler issues a guest identity up front so clients can collect
// participant IDs before creating a session.
func GuestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := EnsureParticipant(w, r)
	if err != nil {
		http.Error(w, "failed to issue guest token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
}

func extractTokenFromCookie(cookie string) string {
	parts := strings.Split(cookie, "auth_token=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
