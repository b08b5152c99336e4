package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/midias/internal/auth"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/urfave/cli/v3"
)

// UserCreate creates an account directly in the database.
func (r *Runner) UserCreate(ctx context.Context, cmd *cli.Command) error {
	in := models.UserInput{
		Username: cmd.String("username"),
		Token:    cmd.String("token"),
		Role:     models.Role(cmd.String("role")),
	}
	if cmd.IsSet("person-id") {
		id := cmd.Int64("person-id")
		in.PersonID = &id
	}
	if err := in.Validate(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(in.Token)
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := repositories.NewUserRepository(db).Create(ctx, &in, hash)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user created", "id", user.ID, "username", user.Username, "role", user.Role)
	return r.writeJSON(user, true)
}

// UserList prints every account.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		person := "-"
		if u.PersonID != nil {
			person = fmt.Sprintf("#%d", *u.PersonID)
		}
		r.writePlain("%-4d %-24s %-6s %s\n", u.ID, u.Username, u.Role, person)
	}
	return nil
}

// userCommand manages accounts without going through the API.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage API accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Login name (at least 3 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "token",
						Aliases:  []string{"t"},
						Usage:    "Secret (at least 4 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "role",
						Usage: "admin or user",
						Value: string(models.RoleUser),
					},
					&cli.Int64Flag{
						Name:  "person-id",
						Usage: "Person linked to the account",
					},
				},
				Action: r.UserCreate,
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output JSON",
					},
				},
				Action: r.UserList,
			},
		},
	}
}
