package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/midias/internal/client"
	"github.com/desertthunder/midias/internal/shared"
	"github.com/urfave/cli/v3"
)

// apiClient builds a client for the --base-url server, defaulting to the configured address,
// and authenticates it with --api-key or --username/--token when given.
func (r *Runner) apiClient(ctx context.Context, cmd *cli.Command) (*client.Client, error) {
	baseURL := cmd.String("base-url")
	if baseURL == "" {
		baseURL = "http://" + r.config.Server.Addr()
	}

	c := client.New(baseURL, r.httpClient)
	if key := cmd.String("api-key"); key != "" {
		c.WithAPIKey(key)
	}

	username, token := cmd.String("username"), cmd.String("token")
	switch {
	case username != "" && token != "":
		user, err := c.Login(ctx, username, token)
		if err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
		r.logger.Debug("logged in", "username", user.Username, "role", user.Role)
	case username != "" || token != "":
		return nil, fmt.Errorf("%w: --username and --token go together", shared.ErrMissingArgument)
	}
	return c, nil
}

// apiAction returns the action of the api subcommand for method.
func (r *Runner) apiAction(method string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.StringArg("path")
		if path == "" {
			return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}

		var body []byte
		if data := cmd.String("data"); data != "" {
			if !isJSON([]byte(data)) {
				return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
			}
			body = []byte(data)
		}

		c, err := r.apiClient(ctx, cmd)
		if err != nil {
			return err
		}

		r.logger.Info("API request", "method", method, "path", path)
		resp, err := c.Do(ctx, method, path, body)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if err := resp.Err(); err != nil {
			return err
		}

		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
		}
		return r.writeRaw(resp.Body)
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	commands := []*cli.Command{}
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		flags := append(connectionFlags(), &cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		})
		if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
			flags = append(flags, &cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "JSON body to send",
				Required: true,
			})
		}

		commands = append(commands, &cli.Command{
			Name:      strings.ToLower(method),
			Usage:     fmt.Sprintf("Direct %s to the API, prints the response", method),
			Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
			Flags:     flags,
			Action:    r.apiAction(method),
		})
	}

	return &cli.Command{
		Name:     "api",
		Usage:    "Direct calls to a running server",
		Commands: commands,
	}
}
