package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/shared"
	"github.com/desertthunder/midias/internal/tasks"
)

type fakeCatalog struct {
	media   []models.Media
	filters []models.MediaFilter
}

func (c *fakeCatalog) ListMedia(_ context.Context, filter models.MediaFilter) ([]models.Media, error) {
	c.filters = append(c.filters, filter)
	var out []models.Media
	for _, m := range c.media {
		if filter.Platform == "" || m.Platform == filter.Platform {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetMedia(_ context.Context, id int64) (*models.Media, error) {
	for _, m := range c.media {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, shared.NotFound("media")
}

type fakeExporter struct {
	ids  []int64
	opts tasks.BulkExportOpts
	err  error
}

func (e *fakeExporter) BulkExport(_ context.Context, prog chan<- tasks.ProgressUpdate, ids []int64, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error) {
	e.ids = ids
	e.opts = opts
	if e.err != nil {
		return nil, e.err
	}

	result := &tasks.BulkExportResult{TotalPeople: len(ids), OutputDirectory: opts.OutputDir, ManifestPath: opts.OutputDir + "/manifest.json"}
	for i, id := range ids {
		prog <- tasks.ProgressUpdate{Phase: tasks.WriteReport, Step: i + 1, Total: len(ids), Message: "written"}
		res := tasks.PersonExportResult{PersonID: id, PersonName: "Ana", Success: id == 1}
		if id != 1 {
			res.PersonName = "Bruno"
			res.Error = errors.New("disk full")
			result.FailedExports++
		} else {
			result.SuccessfulExports++
		}
		result.Results = append(result.Results, res)
	}
	return result, nil
}

func testMedia() []models.Media {
	desc := "Opening session"
	return []models.Media{
		{
			ID: 2, Title: "Oficina", Platform: models.PlatformVimeo, URL: "https://vimeo.com/2", PublishedAt: "2025-03-02",
			People: []models.MediaPersonLink{},
		},
		{
			ID: 1, Title: "Abertura", Platform: models.PlatformYouTube, URL: "https://youtube.com/1", PublishedAt: "2025-01-10",
			Description: &desc,
			People: []models.MediaPersonLink{
				{PersonID: 1, Role: models.RoleResponsavel, PersonName: "Ana"},
				{PersonID: 2, Role: models.RoleParticipante, PersonName: "Bruno"},
				{PersonID: 1, Role: models.RoleParticipante, PersonName: "Ana"},
			},
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and then runs every returned command that yields a [Msg].
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	for cmd != nil {
		next, ok := cmd().(Msg)
		if !ok {
			return
		}
		_, cmd = m.Update(next)
	}
}

func newTestModel(t *testing.T, exporter Exporter) (*Model, *fakeCatalog) {
	t.Helper()
	catalog := &fakeCatalog{media: testMedia()}
	m := NewModel(context.Background(), catalog, exporter, models.MediaFilter{}, tasks.BulkExportOpts{OutputDir: "out"})
	send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})

	next, ok := m.Init()().(Msg)
	if !ok {
		t.Fatal("Init should fetch media")
	}
	send(t, m, next)
	return m, catalog
}

func TestMediaList(t *testing.T) {
	m, catalog := newTestModel(t, nil)

	if got := len(m.mediaList.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	if !strings.Contains(m.View(), "Media (all platforms)") {
		t.Error("list title should mention all platforms")
	}

	t.Run("platform filter cycles", func(t *testing.T) {
		send(t, m, runes("p"))
		if m.filter.Platform != models.PlatformVimeo || len(m.mediaList.Items()) != 1 {
			t.Errorf("expected only vimeo items, got %d", len(m.mediaList.Items()))
		}
		if last := catalog.filters[len(catalog.filters)-1]; last.Platform != models.PlatformVimeo {
			t.Errorf("catalog should be queried with the platform, got %+v", last)
		}

		send(t, m, runes("p"))
		if m.filter.Platform != models.PlatformYouTube {
			t.Errorf("expected youtube, got %q", m.filter.Platform)
		}

		send(t, m, runes("p"))
		if m.filter.Platform != "" || len(m.mediaList.Items()) != 2 {
			t.Errorf("expected all platforms again, got %q", m.filter.Platform)
		}
	})
}

func TestDetail(t *testing.T) {
	m, _ := newTestModel(t, nil)

	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView || m.selected.ID != 2 {
		t.Fatalf("expected the detail of the first item, got view %d", m.view)
	}
	if !strings.Contains(m.View(), "No people linked") {
		t.Error("detail should note the missing people")
	}

	send(t, m, runes("e"))
	if m.view != DetailView {
		t.Error("export needs an exporter and linked people")
	}

	send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != MediaListView || m.selected != nil {
		t.Error("esc should return to the list")
	}

	t.Run("missing item", func(t *testing.T) {
		send(t, m, detailFetchedMsg(nil, shared.NotFound("media")))
		if m.view != MediaListView || !errors.Is(m.err, shared.ErrNotFound) {
			t.Errorf("expected the list with an error, got view %d err %v", m.view, m.err)
		}
		if !strings.Contains(m.View(), "Error:") {
			t.Error("list should show the error")
		}
	})
}

func TestExport(t *testing.T) {
	exporter := &fakeExporter{}
	m, _ := newTestModel(t, exporter)

	send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView || m.selected.Title != "Abertura" {
		t.Fatalf("expected Abertura, got %+v", m.selected)
	}
	view := m.View()
	for _, want := range []string{"Opening session", "Ana (responsavel)", "Bruno (participante)"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail missing %q", want)
		}
	}

	send(t, m, runes("e"))
	if m.view != ConfirmView || !strings.Contains(m.View(), "Format: csv") {
		t.Fatalf("expected the confirmation, got view %d", m.view)
	}

	send(t, m, runes("n"))
	if m.view != DetailView {
		t.Fatal("n should cancel the export")
	}

	send(t, m, runes("e"))
	send(t, m, runes("y"))
	if m.view != ResultView {
		t.Fatalf("expected the result view, got %d", m.view)
	}
	if len(exporter.ids) != 2 || exporter.ids[0] != 1 || exporter.ids[1] != 2 {
		t.Errorf("expected distinct person ids, got %v", exporter.ids)
	}
	if exporter.opts.OutputDir != "out" {
		t.Errorf("expected the configured options, got %+v", exporter.opts)
	}

	view = m.View()
	for _, want := range []string{"Export Complete", "Reports: 1/2", "Bruno: disk full"} {
		if !strings.Contains(view, want) {
			t.Errorf("result missing %q", want)
		}
	}

	send(t, m, runes("r"))
	if m.view != MediaListView || m.result != nil {
		t.Error("r should return to the list")
	}

	t.Run("failure", func(t *testing.T) {
		exporter.err = errors.New("no space")
		send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		send(t, m, runes("e"))
		send(t, m, runes("y"))
		if m.view != ResultView || !strings.Contains(m.View(), "Export failed: no space") {
			t.Errorf("expected the failure, got %q", m.View())
		}
	})
}

func TestRenderExport(t *testing.T) {
	m := NewModel(context.Background(), &fakeCatalog{}, nil, models.MediaFilter{}, tasks.BulkExportOpts{})
	m.view = ExportView

	tests := []struct {
		update tasks.ProgressUpdate
		want   string
	}{
		{tasks.ProgressUpdate{Phase: tasks.FetchReport, Step: 1, Total: 3}, "Fetching reports (1/3)"},
		{tasks.ProgressUpdate{Phase: tasks.WriteReport, Step: 2, Total: 3}, "Writing reports (2/3)"},
		{tasks.ProgressUpdate{Phase: tasks.WriteManifest}, "Writing manifest"},
	}
	for _, tt := range tests {
		m.progress = tt.update
		if got := m.View(); !strings.Contains(got, tt.want) {
			t.Errorf("expected %q in %q", tt.want, got)
		}
	}
}

func TestNextPlatform(t *testing.T) {
	for in, want := range map[models.Platform]models.Platform{
		"":                     models.PlatformVimeo,
		models.PlatformVimeo:   models.PlatformYouTube,
		models.PlatformYouTube: "",
	} {
		if got := nextPlatform(in); got != want {
			t.Errorf("nextPlatform(%q) = %q, want %q", in, got, want)
		}
	}
}
