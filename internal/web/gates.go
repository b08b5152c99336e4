package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/shared"
)

// APIKeyHeader carries the static key of the API-key gate.
const APIKeyHeader = "X-API-Key"

// UserLookup loads the account a session belongs to.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

type userKey struct{}

// UserFrom returns the account resolved by the session gate.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok
}

// Gates builds the authentication middleware of the API.
type Gates struct {
	codec  *auth.SessionCodec
	users  UserLookup
	apiKey string
	mode   string
}

// NewGates creates the gates. mode selects which gate [Gates.Mutations] returns.
func NewGates(codec *auth.SessionCodec, users UserLookup, apiKey, mode string) *Gates {
	return &Gates{codec: codec, users: users, apiKey: apiKey, mode: mode}
}

// Session requires a valid session cookie naming an existing account.
func (g *Gates) Session() server.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := g.authenticate(r)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), userKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin requires a session whose account holds the admin role.
func (g *Gates) Admin() server.Middleware {
	return func(next http.Handler) http.Handler {
		return g.Session()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFrom(r.Context())
			if !user.IsAdmin() {
				WriteError(w, r, shared.Forbidden("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// APIKey requires the configured static key. An empty configured key rejects every request.
func (g *Gates) APIKey() server.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if g.apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(g.apiKey)) != 1 {
				WriteError(w, r, shared.Unauthorized("invalid or missing API key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Mutations is the gate protecting entity writes: [Gates.APIKey] in api_key mode, [Gates.Session] otherwise.
func (g *Gates) Mutations() server.Middleware {
	if g.mode == shared.AuthModeAPIKey {
		return g.APIKey()
	}
	return g.Session()
}

func (g *Gates) authenticate(r *http.Request) (*models.User, error) {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, shared.Unauthorized("authentication required")
	}

	claims, err := g.codec.Verify(cookie.Value)
	if err != nil {
		return nil, shared.Unauthorized("invalid or expired session")
	}

	user, err := g.users.Get(r.Context(), claims.UserID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.Unauthorized("invalid or expired session")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
