package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if cmd.IsSet("host") {
		r.config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		r.config.Server.Port = int(cmd.Int("port"))
	}

	srv, db, err := r.newServer(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}

// newServer opens the database, ensures the administrative account and builds the server.
// The caller closes the returned database.
func (r *Runner) newServer(ctx context.Context) (*server.Server, *sql.DB, error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, err
	}

	users := repositories.NewUserRepository(db)
	if err := auth.EnsureAdmin(ctx, users, r.config.Auth.AdminUsername, r.config.Auth.AdminSecret, r.logger); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure admin account: %w", err)
	}

	router := web.NewRouter(r.config, db, nil, r.logger)
	srv := server.NewServer(r.config.Server.Addr(), router, r.config.Server.ShutdownTimeout, r.logger)

	r.logger.Info("server configured",
		"addr", r.config.Server.Addr(),
		"auth_mode", r.config.Auth.Mode,
		"database", r.config.Database.Path,
	)
	return srv, db, nil
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to bind (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to bind (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}
