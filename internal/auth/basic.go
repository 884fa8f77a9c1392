package auth

import (
	"context"
	"net/http"

	"github.com/generation/blogpessoal/internal/model"
)

// Authenticator checks a usuario/senha pair against the stored users.
// It's satisfied by service.UserService — declaring the interface here
// (at the point of use) keeps this package from importing the service.
type Authenticator interface {
	Authenticate(ctx context.Context, usuario, senha string) (*model.User, error)
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue keys are compared by type AND value. A plain string
// key like "user" could be read or shadowed by any package that guesses
// the string. With a package-private type, only this package can mint
// the key, so only this package controls what's under it.
type contextKey string

const userKey contextKey = "user"

// RequireBasicAuth is a middleware that enforces HTTP Basic
// authentication on protected routes.
//
// It decodes the Authorization header, verifies the usuario/senha pair
// through the Authenticator (bcrypt compare against the stored hash),
// and stores the authenticated *model.User in the request context. Any
// valid account passes — there is no role model.
//
// On failure it replies 401 with a WWW-Authenticate challenge, which is
// what makes browsers and http clients prompt for credentials.
func RequireBasicAuth(users Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			usuario, senha, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			user, err := users.Authenticate(r.Context(), usuario, senha)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user from the request
// context. Returns (nil, false) on routes that didn't pass through
// RequireBasicAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="blogpessoal"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid credentials required"}`))
}
