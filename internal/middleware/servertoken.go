// AngelaMos | 2026
// servertoken.go

package middleware

import (
	"net/http"

	"github.com/carterperez-dev/asmr-backend/internal/access"
	"github.com/carterperez-dev/asmr-backend/internal/core"
)

// RequireAdminOrServerToken admits an admin session or a machine caller
// presenting the shared secret in header. It expects OptionalAuth to have
// run first.
func RequireAdminOrServerToken(
	header, secret string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsAdmin(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			if access.ServerTokenMatches(secret, r.Header.Get(header)) {
				next.ServeHTTP(w, r)
				return
			}

			if IsAuthenticated(r.Context()) {
				core.JSONError(w, core.ForbiddenError(""))
				return
			}

			core.JSONError(w, core.UnauthorizedError(""))
		})
	}
}
