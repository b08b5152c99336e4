package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk report exports.
type BulkExportOpts struct {
	Format     formatter.Format   // Export format: csv, json, md, txt
	OutputDir  string             // Base output directory (default: reports_{epoch})
	NumWorkers int                // Concurrent writers (default: 4, max 10)
	RateLimit  float64            // Report queries per second (default: 10)
	Filter     models.MediaFilter // Filters applied to every report; the person is set per report
}

// PersonExportResult is the outcome of exporting one person's report.
type PersonExportResult struct {
	PersonID   int64
	PersonName string
	MediaCount int
	Files      []string
	Success    bool
	Error      error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPeople       int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PersonExportResult
}

// reportJob carries either a built report or the error that stopped it being built.
// Only workers send on the results channel.
type reportJob struct {
	step     int
	personID int64
	report   *formatter.Report
	err      error
}

// BulkExport writes one report file per person with a pool of workers and a manifest.json summary.
//
// Report queries are rate limited so a large export does not starve the API's database.
// Failures are recorded per person; the export itself only fails when the output directory
// or the manifest cannot be written, or when ctx is cancelled.
func (e *ReportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	personIDs []int64,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if len(personIDs) == 0 {
		return nil, fmt.Errorf("%w: no person ids given", shared.ErrMissingArgument)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatCSV
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("reports_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(personIDs)
	result := &BulkExportResult{
		TotalPeople:     total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]PersonExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan reportJob, total)
	results := make(chan PersonExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		e.sendProgress(prog, startingExportUpdate(total))
		for i, id := range personIDs {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			report, err := e.BuildReport(ctx, id, opts.Filter)
			if err != nil {
				jobs <- reportJob{step: i + 1, personID: id, err: fmt.Errorf("failed to build report: %w", err)}
				continue
			}

			e.sendProgress(prog, fetchedReportUpdate(i+1, total, report.Person.Name, len(report.Items)))
			jobs <- reportJob{step: i + 1, personID: id, report: report}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, reportWrittenUpdate(completed, total, res))
		} else {
			result.FailedExports++
			e.logger.Warn("report export failed", "person_id", res.PersonID, "error", res.Error)
			e.sendProgress(prog, reportFailedUpdate(completed, total, res))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].PersonID < result.Results[j].PersonID
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("bulk export cancelled after %d of %d reports: %w", completed, total, err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "manifest.json")
	if err := writeManifest(result, opts, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that writes reports from the jobs channel.
func (e *ReportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan reportJob,
	results chan<- PersonExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if job.err != nil {
			results <- PersonExportResult{
				PersonID:   job.personID,
				PersonName: fmt.Sprintf("Unknown (%d)", job.personID),
				Error:      job.err,
			}
			continue
		}
		results <- e.exportSingleReport(job.report, opts)
	}
}

// exportSingleReport writes one report to {dir}/person_{id}.{format}.
func (e *ReportEngine) exportSingleReport(report *formatter.Report, opts BulkExportOpts) PersonExportResult {
	res := PersonExportResult{
		PersonID:   report.Person.ID,
		PersonName: report.Person.Name,
		MediaCount: len(report.Items),
		Files:      []string{},
	}

	path := filepath.Join(opts.OutputDir, formatter.DefaultFilename(report, opts.Format))
	written, err := formatter.WriteReport(report, opts.Format, path)
	if err != nil {
		res.Error = err
		return res
	}

	res.Files = []string{written}
	res.Success = true
	return res
}
