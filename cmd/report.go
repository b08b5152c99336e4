package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/repositories"
	"github.com/desertthunder/midias/internal/shared"
	"github.com/desertthunder/midias/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ReportByPerson prints or writes the media report of one person.
func (r *Runner) ReportByPerson(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewReportEngine(repositories.NewPersonRepository(db), repositories.NewMediaRepository(db), r.logger)
	report, err := engine.BuildReport(ctx, cmd.Int64("person-id"), filterFromCommand(cmd))
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteReport(report, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "media", len(report.Items))
		return r.writePlain("✓ Report written to %s\n", path)
	}

	data, err := formatter.Export(report, format)
	if err != nil {
		return err
	}
	return r.writeRaw(data)
}

// ReportBulk writes one report per person with a worker pool and a manifest.
func (r *Runner) ReportBulk(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	people := repositories.NewPersonRepository(db)
	ids := cmd.Int64Slice("person-ids")
	if cmd.Bool("all") {
		all, err := people.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list people: %w", err)
		}
		ids = ids[:0]
		for _, p := range all {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass --person-ids or --all", shared.ErrMissingArgument)
	}

	engine := tasks.NewReportEngine(people, repositories.NewMediaRepository(db), r.logger)

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, prog, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Filter:     filterFromCommand(cmd),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Bulk export")
	r.writePlain("Reports:   %d/%d\n", result.SuccessfulExports, result.TotalPeople)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		r.writePlainln("Failed:")
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  • %s: %v\n", res.PersonName, res.Error)
			}
		}
	}
	return nil
}

// reportCommand builds per-person media reports from the local database.
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Per-person media reports",
		Commands: []*cli.Command{
			{
				Name:  "by-person",
				Usage: "Report the media one person is linked to",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:     "person-id",
						Usage:    "Person to report on",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, json, md or txt",
						Value:   string(formatter.FormatCSV),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				}, filterFlags()...),
				Action: r.ReportByPerson,
			},
			{
				Name:  "bulk",
				Usage: "Write one report per person and a manifest",
				Flags: append([]cli.Flag{
					&cli.Int64SliceFlag{
						Name:  "person-ids",
						Usage: "People to export (comma separated)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every person",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, json, md or txt",
						Value:   string(formatter.FormatCSV),
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory (default: reports_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Report queries per second",
						Value: 10,
					},
				}, filterFlags()...),
				Action: r.ReportBulk,
			},
		},
	}
}
