package formatter

import (
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/midias/internal/models"
	th "github.com/desertthunder/midias/internal/testing"
)

func sampleReport() *Report {
	return &Report{
		Person: &models.Person{ID: 7, Name: "Ana Souza"},
		Filter: models.MediaFilter{PersonID: th.Ptr(int64(7)), Platform: models.PlatformYouTube},
		Items: []models.Media{
			{
				ID:          2,
				Title:       "Live, de abertura",
				Platform:    models.PlatformYouTube,
				URL:         "https://youtube.com/watch?v=abc",
				PublishedAt: "2025-08-10",
				LineID:      th.Ptr(int64(3)),
				SystemID:    th.Ptr(int64(1)),
				People:      []models.MediaPersonLink{{PersonID: 7, Role: models.RoleResponsavel, PersonName: "Ana Souza"}},
			},
			{
				ID:          1,
				Title:       "Entrevista",
				Platform:    models.PlatformYouTube,
				URL:         "https://youtube.com/watch?v=def",
				PublishedAt: "2025-07-01",
				People:      []models.MediaPersonLink{{PersonID: 7, Role: models.RoleParticipante}},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "csv", want: FormatCSV},
		{in: "", want: FormatCSV},
		{in: "JSON", want: FormatJSON},
		{in: "markdown", want: FormatMarkdown},
		{in: "md", want: FormatMarkdown},
		{in: "text", want: FormatText},
		{in: "xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExporters(t *testing.T) {
	report := sampleReport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(report.Items)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d records", len(records))
		}
		if strings.Join(records[0], ",") != "media_id,title,platform,url,published_at,line_id,system_id" {
			t.Errorf("unexpected header %v", records[0])
		}

		want := []string{"2", "Live, de abertura", "youtube", "https://youtube.com/watch?v=abc", "2025-08-10", "3", "1"}
		if strings.Join(records[1], "|") != strings.Join(want, "|") {
			t.Errorf("expected row %v, got %v", want, records[1])
		}
		if records[2][5] != "" || records[2][6] != "" {
			t.Errorf("absent ids should be empty cells, got %v", records[2])
		}
	})

	t.Run("ExportToCSV empty", func(t *testing.T) {
		data, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if string(data) != "media_id,title,platform,url,published_at,line_id,system_id\n" {
			t.Errorf("expected only the header, got %q", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(&Report{})
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"items": []`) {
			t.Errorf("empty report should carry an empty items list, got %s", data)
		}

		data, err = ExportToJSON(report)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		var decoded Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Person == nil || decoded.Person.Name != "Ana Souza" {
			t.Errorf("expected the person, got %+v", decoded.Person)
		}
		if len(decoded.Items) != 2 || decoded.Items[0].ID != 2 {
			t.Errorf("expected items in order, got %+v", decoded.Items)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(report)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Ana Souza",
			"**Filters**: platform=youtube",
			"**Media**: 2",
			"1. [Live, de abertura](https://youtube.com/watch?v=abc) (youtube, 2025-08-10)",
			"   - responsavel: Ana Souza",
			"   - participante: #7",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(report)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Report: Ana Souza",
			"Media: 2",
			"2. 2025-07-01 [youtube] Entrevista https://youtube.com/watch?v=def",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Export unknown format", func(t *testing.T) {
		if _, err := Export(report, Format("pdf")); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestWriteReport(t *testing.T) {
	report := sampleReport()

	t.Run("WithDefaultPath", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteReport(report, FormatCSV, "")
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if path != "person_7.csv" {
			t.Errorf("expected person_7.csv, got %s", path)
		}

		th.AssertFileExists(t, path)
		if !strings.HasPrefix(th.MustReadFile(t, path), "media_id,title") {
			t.Error("CSV file missing header")
		}
	})

	t.Run("WithNestedPath", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "ana.md")

		got, err := WriteReport(report, FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("DefaultFilename", func(t *testing.T) {
		if got := DefaultFilename(&Report{Filter: models.MediaFilter{PersonID: th.Ptr(int64(3))}}, FormatJSON); got != "person_3.json" {
			t.Errorf("expected person_3.json, got %s", got)
		}
		if got := DefaultFilename(&Report{}, FormatText); got != "report.txt" {
			t.Errorf("expected report.txt, got %s", got)
		}
	})
}
