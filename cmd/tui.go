package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/midias/internal/client"
	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/desertthunder/midias/internal/shared"
	"github.com/desertthunder/midias/internal/tasks"
	"github.com/desertthunder/midias/internal/ui"
	"github.com/urfave/cli/v3"
)

// localCatalog reads media straight from the database.
type localCatalog struct {
	media *repositories.MediaRepository
}

func (c localCatalog) ListMedia(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	return c.media.List(ctx, filter)
}

func (c localCatalog) GetMedia(ctx context.Context, id int64) (*models.Media, error) {
	return c.media.Get(ctx, id)
}

// remotePeople and remoteMedia let the report engine read through the API client.
type remotePeople struct{ c *client.Client }

func (p remotePeople) Get(ctx context.Context, id int64) (*models.Person, error) {
	return p.c.GetPerson(ctx, id)
}

type remoteMedia struct{ c *client.Client }

func (m remoteMedia) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	return m.c.ListMedia(ctx, filter)
}

// TUI launches the interactive media browser, against the local database or a server with --remote.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger

	var catalog ui.Catalog
	var engine *tasks.ReportEngine
	if cmd.Bool("remote") {
		c, err := r.apiClient(ctx, cmd)
		if err != nil {
			return err
		}
		catalog = c
		engine = tasks.NewReportEngine(remotePeople{c}, remoteMedia{c}, r.logger)
	} else {
		db, err := r.openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		media := repositories.NewMediaRepository(db)
		catalog = localCatalog{media: media}
		engine = tasks.NewReportEngine(repositories.NewPersonRepository(db), media, r.logger)
	}

	opts := tasks.BulkExportOpts{Format: format, OutputDir: cmd.String("dir")}
	model := ui.NewModel(ctx, catalog, engine, filterFromCommand(cmd), opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for browsing media.
func tuiCommand(r *Runner) *cli.Command {
	flags := append(connectionFlags(),
		&cli.BoolFlag{
			Name:  "remote",
			Usage: "Browse a running server instead of the local database",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Format of exported reports: csv, json, md or txt",
			Value:   string(formatter.FormatCSV),
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Directory for exported reports (default: reports_{epoch})",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Where logs go while the TUI runs",
			Value: "./tmp/midias-tui.log",
		},
	)

	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse media, filter by platform and export reports interactively",
		Flags:   append(flags, filterFlags()...),
		Action:  r.TUI,
	}
}
