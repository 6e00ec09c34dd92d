package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/mbayed/filevault/internal/common"
	"github.com/mbayed/filevault/internal/server/models"
)

type contextKey string

const userKey contextKey = "user"

// requireUser enforces bearer auth: the token's email must resolve to an
// existing account, which is then stored in the request context.
func (s *HTTPServer) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrUnauthorized)
			return
		}

		user, err := s.auth.ResolveToken(r.Context(), token)
		if err != nil {
			writeError(w, common.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the authenticated user set by requireUser.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}
