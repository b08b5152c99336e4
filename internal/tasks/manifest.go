package tasks

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/midias/internal/formatter"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// Manifest is the JSON summary written next to bulk exported reports.
type Manifest struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Format      formatter.Format   `json:"format"`
	Filter      models.MediaFilter `json:"filter"`
	Total       int                `json:"total"`
	Successful  int                `json:"successful"`
	Failed      int                `json:"failed"`
	Reports     []ManifestEntry    `json:"reports"`
}

// ManifestEntry describes one person's export. File paths are relative to the manifest.
type ManifestEntry struct {
	PersonID   int64    `json:"person_id"`
	PersonName string   `json:"person_name"`
	MediaCount int      `json:"media_count"`
	Files      []string `json:"files"`
	Error      string   `json:"error,omitempty"`
}

func writeManifest(result *BulkExportResult, opts BulkExportOpts, path string) error {
	filter := opts.Filter
	filter.PersonID = nil

	m := Manifest{
		GeneratedAt: time.Now().UTC(),
		Format:      opts.Format,
		Filter:      filter,
		Total:       result.TotalPeople,
		Successful:  result.SuccessfulExports,
		Failed:      result.FailedExports,
		Reports:     make([]ManifestEntry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		entry := ManifestEntry{
			PersonID:   res.PersonID,
			PersonName: res.PersonName,
			MediaCount: res.MediaCount,
			Files:      make([]string, 0, len(res.Files)),
		}
		for _, f := range res.Files {
			rel, err := filepath.Rel(opts.OutputDir, f)
			if err != nil {
				rel = f
			}
			entry.Files = append(entry.Files, rel)
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Reports = append(m.Reports, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
