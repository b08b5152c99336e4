package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchReport Phase = iota
	WriteReport
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchReport:
		return "fetch_report"
	case WriteReport:
		return "write_report"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func startingExportUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReport,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting reports for %d people...", total),
	}
}

func fetchedReportUpdate(step, total int, name string, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetched: %s (%d media)", step, total, name, items),
	}
}

func reportWrittenUpdate(step, total int, res PersonExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d media)", step, total, res.PersonName, res.MediaCount),
		Data:    res,
	}
}

func reportFailedUpdate(step, total int, res PersonExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.PersonName, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: "Manifest written to " + path,
	}
}
