// package formatter renders media reports as CSV, JSON, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
)

// CSVHeader is the fixed column set of CSV reports.
var CSVHeader = []string{"media_id", "title", "platform", "url", "published_at", "line_id", "system_id"}

// CSVFilename is the attachment name used when a report is downloaded as CSV.
const CSVFilename = "relatorio_por_pessoa.csv"

// Format is an output format of a report.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat maps a user supplied format name to a [Format].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	}
	return "", fmt.Errorf("%w: unknown format %q (use csv, json, md or txt)", shared.ErrInvalidArgument, s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	}
	return "text/csv"
}

// Report is the media of one person, optionally narrowed by a filter.
type Report struct {
	Person *models.Person     `json:"person,omitempty"`
	Filter models.MediaFilter `json:"filter"`
	Items  []models.Media     `json:"items"`
}

// Export renders a report in the given format.
func Export(report *Report, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(report.Items)
	case FormatJSON:
		return ExportToJSON(report)
	case FormatMarkdown:
		return ExportToMarkdown(report)
	case FormatText:
		return ExportToText(report)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// ExportToCSV writes media with the [CSVHeader] columns. Absent line and system ids are empty cells.
func ExportToCSV(items []models.Media) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range items {
		record := []string{
			strconv.FormatInt(m.ID, 10),
			m.Title,
			string(m.Platform),
			m.URL,
			m.PublishedAt,
			optionalID(m.LineID),
			optionalID(m.SystemID),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON writes the whole report, person and filter included, as indented JSON.
func ExportToJSON(report *Report) ([]byte, error) {
	items := report.Items
	if items == nil {
		items = []models.Media{}
	}
	out := *report
	out.Items = items
	return shared.MarshalJSON(out, true)
}

// ExportToMarkdown writes a heading per report and one list entry per media item.
func ExportToMarkdown(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", reportTitle(report))
	if scope := describeFilter(report.Filter); scope != "" {
		fmt.Fprintf(&buf, "**Filters**: %s\n\n", scope)
	}
	fmt.Fprintf(&buf, "**Media**: %d\n\n", len(report.Items))

	buf.WriteString("## Media\n\n")
	for i, m := range report.Items {
		fmt.Fprintf(&buf, "%d. [%s](%s) (%s, %s)\n", i+1, m.Title, m.URL, m.Platform, m.PublishedAt)
		for _, p := range m.People {
			fmt.Fprintf(&buf, "   - %s: %s\n", p.Role, personLabel(p))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText writes a plain text listing of the report.
func ExportToText(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Report: %s\n", reportTitle(report))
	if scope := describeFilter(report.Filter); scope != "" {
		fmt.Fprintf(&buf, "Filters: %s\n", scope)
	}
	fmt.Fprintf(&buf, "Media: %d\n\n", len(report.Items))

	for i, m := range report.Items {
		fmt.Fprintf(&buf, "%d. %s [%s] %s %s\n", i+1, m.PublishedAt, m.Platform, m.Title, m.URL)
	}

	return buf.Bytes(), nil
}

// WriteReport renders a report and writes it to path.
//
// An empty path defaults to person_{id}.{format} in the working directory.
func WriteReport(report *Report, format Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(report, format)
	}

	data, err := Export(report, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// DefaultFilename names a report file after its person.
func DefaultFilename(report *Report, format Format) string {
	if report.Person == nil {
		if report.Filter.PersonID != nil {
			return fmt.Sprintf("person_%d.%s", *report.Filter.PersonID, format)
		}
		return "report." + string(format)
	}
	return fmt.Sprintf("person_%d.%s", report.Person.ID, format)
}

func reportTitle(report *Report) string {
	switch {
	case report.Person != nil:
		return report.Person.Name
	case report.Filter.PersonID != nil:
		return fmt.Sprintf("Person %d", *report.Filter.PersonID)
	}
	return "All media"
}

func describeFilter(f models.MediaFilter) string {
	var parts []string
	if f.Platform != "" {
		parts = append(parts, "platform="+string(f.Platform))
	}
	if f.LineID != nil {
		parts = append(parts, "line_id="+optionalID(f.LineID))
	}
	if f.SystemID != nil {
		parts = append(parts, "system_id="+optionalID(f.SystemID))
	}
	if f.DateFrom != "" {
		parts = append(parts, "from "+f.DateFrom)
	}
	if f.DateTo != "" {
		parts = append(parts, "to "+f.DateTo)
	}
	return strings.Join(parts, ", ")
}

func personLabel(p models.MediaPersonLink) string {
	if p.PersonName != "" {
		return p.PersonName
	}
	return "#" + strconv.FormatInt(p.PersonID, 10)
}

func optionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
