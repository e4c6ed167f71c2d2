package middleware

import (
	"net/http"
	"strings"

	"github.com/maeumssi/maeumssi/internal/modules/auth/infrastructure/jwt"
	"github.com/maeumssi/maeumssi/internal/modules/guard"
	"github.com/maeumssi/maeumssi/internal/modules/session"
	"github.com/maeumssi/maeumssi/internal/shared/utils"
)

type AuthMiddleWare struct {
	jwtSecret string
}

// NewAuthMiddleware returns middleware that verifies tokens signed with jwtSecret.
func NewAuthMiddleware(jwtSecret string) *AuthMiddleWare {
	return &AuthMiddleWare{jwtSecret: jwtSecret}
}

func bearer(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func (m *AuthMiddleWare) resolve(tokenStr string) (session.State, bool) {
	claims, err := jwt.ValidateToken(tokenStr, m.jwtSecret)
	if err != nil {
		return session.State{Initialized: true}, false
	}
	s := claims.Session()
	return session.State{Session: &s, Initialized: true}, true
}

// RequireAuth rejects requests without a valid token and stores the resolved
// session in the request context. Websocket upgrades pass the token in the
// "token" query parameter.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearer(r)
		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			utils.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization", nil)
			return
		}

		st, ok := m.resolve(tokenStr)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), st)))
	})
}

// FlexibleAuth resolves the session when a valid token is present and
// otherwise proceeds with an initialized, empty session.
func (m *AuthMiddleWare) FlexibleAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := session.State{Initialized: true}
		if tokenStr := bearer(r); tokenStr != "" {
			st, _ = m.resolve(tokenStr)
		}
		next.ServeHTTP(w, r.WithContext(session.WithState(r.Context(), st)))
	})
}

// RequireMember is RequireAuth plus the action guard decision: guest
// sessions get 403 with the onboarding path to redirect to.
func (m *AuthMiddleWare) RequireMember(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.Permits(session.FromContext(r.Context())) {
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse{
				Error:    "sign up to use this feature",
				Redirect: session.OnboardingPath,
			})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
