// Package web implements the JSON API of midias on top of the server package.
//
// # Routes
//
//	POST   /auth/login            → session cookie (throttled per client address)
//	POST   /auth/logout           → clears the cookie
//	GET    /auth/me, /auth/ping   → session required
//	*      /people, /lines, /systems, /media
//	                              → reads public, writes behind the configured gate
//	PATCH  /people/{id}, /media/{id}
//	*      /users                 → admin role required
//	GET    /reports/by-person     → JSON, or CSV with csv_export
//	GET    /healthz               → database ping
//
// # Errors
//
// Every failure travels as an error to [WriteError], which writes the envelope
// {"code", "message", "details"}. Handlers never write error bodies themselves.
//
// # Authentication
//
// [Gates] resolves identity. Entity writes use the cookie session or the static API key
// depending on auth.mode; user administration always requires an admin session.
package web

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/shared"
)

// Pinger checks that storage is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter wires repositories, gates, handlers and middleware into one [server.Router].
//
// A nil codec is built from the configured secret.
func NewRouter(cfg *shared.Config, db *sql.DB, codec *auth.SessionCodec, logger *log.Logger) server.Router {
	if codec == nil {
		codec = auth.NewSessionCodec(cfg.Auth.Secret)
	}

	people := repositories.NewPersonRepository(db)
	systems := repositories.NewSystemRepository(db)
	lines := repositories.NewLineRepository(db)
	media := repositories.NewMediaRepository(db)
	users := repositories.NewUserRepository(db)

	gates := NewGates(codec, users, cfg.Auth.APIKey, cfg.Auth.Mode)
	writes := gates.Mutations()
	throttle := server.NewThrottle(cfg.Auth.LoginRate, cfg.Auth.LoginBurst)

	r := server.NewChiRouter()
	r.Use(
		server.RequestID(logger),
		server.Logging(),
		server.Recover(PanicHandler),
		server.CORS(cfg.Server.AllowedOrigins),
		server.MaxBody(cfg.Server.MaxBodyBytes),
	)
	r.NotFound(NotFoundHandler())
	r.MethodNotAllowed(MethodNotAllowedHandler())

	r.Handler(NewAuthHandler(users, codec, cfg.Auth, gates.Session(), throttle.Middleware(TooManyRequestsHandler())))
	r.Handler(NewPeopleHandler(people, writes))
	r.Handler(NewSystemsHandler(systems, writes))
	r.Handler(NewLinesHandler(lines, writes))
	r.Handler(NewMediaHandler(media, writes))
	r.Handler(NewUsersHandler(users, gates.Admin()))
	r.Handler(NewReportsHandler(media))
	r.Handle(http.MethodGet, "/healthz", Health(db))

	return r
}

// Health answers {"ok": true} when storage responds to a ping.
func Health(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			WriteError(w, r, err)
			return
		}
		writeOK(w)
	})
}
