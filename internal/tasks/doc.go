// Package tasks assembles media reports per person and exports them in bulk.
//
// # Core Operations
//
//  1. [ReportEngine.BuildReport] : one person's media
//     - Loads the person (not found surfaces as [shared.ErrNotFound])
//     - Lists the media linked to them, narrowed by the optional filter
//
//  2. [ReportEngine.BulkExport] : many reports at once
//     - A producer builds reports under a [rate.Limiter]
//     - A pool of workers renders them through the formatter package
//     - Per-person failures are recorded, not fatal
//     - A manifest.json summarizes the run
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
