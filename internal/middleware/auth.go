package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
)

type contextKey string

const sessionKey contextKey = "pos_session"

// SessionResolver looks up the session a bearer token belongs to
type SessionResolver interface {
	Session(ctx context.Context, token string) (models.Session, error)
}

// RequireSession lets a request through only with a live session token in
// the Authorization header. The session is put on the request context.
func RequireSession(sessions SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized: session token required")
				return
			}

			session, err := sessions.Session(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized: session expired or invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
		})
	}
}

// SessionFromContext returns the session RequireSession stored
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// Browsers cannot set headers on websocket upgrades, so a token query
// parameter is accepted as well.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
