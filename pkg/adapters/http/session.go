package http

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/uuid"
)

// SessionCookie names the cookie identifying the user session.
const SessionCookie = "waypoint_session"

type cookieConfig struct {
	name   string
	secure bool
}

type (
	sessionKey struct{}
	tokenKey   struct{}
)

// withSession reads the session cookie, issuing a new session id when absent.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(s.cookie.name); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cookie.name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cookie.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// withToken extracts the journey token from the query string or form.
func withToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue(domain.ContextParamName)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, token)))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
