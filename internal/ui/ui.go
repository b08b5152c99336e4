package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/tasks"
)

// Catalog is the read side of the media catalog the TUI browses.
type Catalog interface {
	ListMedia(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
	GetMedia(ctx context.Context, id int64) (*models.Media, error)
}

// Exporter writes per-person reports. [tasks.ReportEngine] implements it.
type Exporter interface {
	BulkExport(ctx context.Context, prog chan<- tasks.ProgressUpdate, personIDs []int64, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MediaListView ViewState = iota
	DetailView
	ConfirmView
	ExportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	catalog      Catalog
	exporter     Exporter
	opts         tasks.BulkExportOpts
	filter       models.MediaFilter
	width        int
	height       int
	mediaList    list.Model
	selected     *models.Media
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model. filter narrows every listing; opts configures exports.
// A nil exporter disables exports.
func NewModel(ctx context.Context, catalog Catalog, exporter Exporter, filter models.MediaFilter, opts tasks.BulkExportOpts) *Model {
	m := &Model{
		ctx:       ctx,
		view:      MediaListView,
		catalog:   catalog,
		exporter:  exporter,
		opts:      opts,
		filter:    filter,
		mediaList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.mediaList.Title = m.listTitle()
	return m
}

// Init initializes the TUI by fetching the first page of media.
func (m *Model) Init() tea.Cmd {
	return m.fetchMedia()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.mediaList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MediaListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == MediaListView {
		var cmd tea.Cmd
		m.mediaList, cmd = m.mediaList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgMediaFetched:
		data := msg.data.(mediaFetched)
		m.err = data.err
		if data.err == nil {
			m.mediaList.Title = m.listTitle()
			return m, m.mediaList.SetItems(mediaItems(data.media))
		}

	case MsgDetailFetched:
		data := msg.data.(detailFetched)
		if data.err != nil {
			m.err = data.err
			m.view = MediaListView
			return m, nil
		}
		m.err = nil
		m.selected = data.media
		m.view = DetailView

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportComplete)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MediaListView:
		return m.renderMediaList()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mediaList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.mediaList, cmd = m.mediaList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.platform):
		m.filter.Platform = nextPlatform(m.filter.Platform)
		return m, m.fetchMedia()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.mediaList.SelectedItem().(mediaItem); ok {
			return m, m.fetchDetail(item.media.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.mediaList, cmd = m.mediaList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = MediaListView
		m.selected = nil
	case key.Matches(msg, m.keys.export):
		if m.exporter != nil && len(m.selected.People) > 0 {
			m.view = ConfirmView
		}
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ExportView
		return m, m.startExport()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = DetailView
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = MediaListView
		m.selected = nil
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
	}
	return m, nil
}

func (m *Model) fetchMedia() tea.Cmd {
	filter := m.filter
	return func() tea.Msg {
		media, err := m.catalog.ListMedia(m.ctx, filter)
		return mediaFetchedMsg(media, err)
	}
}

func (m *Model) fetchDetail(id int64) tea.Cmd {
	return func() tea.Msg {
		media, err := m.catalog.GetMedia(m.ctx, id)
		return detailFetchedMsg(media, err)
	}
}

// startExport runs the exporter for every person linked to the selected item.
// The completion message is queued before the progress channel closes.
func (m *Model) startExport() tea.Cmd {
	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = prog
	m.doneChan = done

	ids := personIDs(m.selected.People)
	go func() {
		result, err := m.exporter.BulkExport(m.ctx, prog, ids, m.opts)
		done <- exportCompleteMsg(result, err)
		close(prog)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	prog, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		update, ok := <-prog
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) listTitle() string {
	if m.filter.Platform == "" {
		return "Media (all platforms)"
	}
	return fmt.Sprintf("Media (%s)", m.filter.Platform)
}

func (m *Model) renderMediaList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.platform, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	var status string
	if m.err != nil {
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}
	return fmt.Sprintf("%s%s\n\n%s", status, m.mediaList.View(), helpView)
}

func (m *Model) renderDetail() string {
	md := m.selected
	var b strings.Builder
	b.WriteString(styles.title.Render(md.Title))
	b.WriteString("\n")

	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(label+":"), value)
	}
	field("Platform", string(md.Platform))
	field("URL", md.URL)
	field("Published", md.PublishedAt)
	if md.Description != nil {
		field("Description", *md.Description)
	}
	if md.LineID != nil {
		field("Line", fmt.Sprintf("#%d", *md.LineID))
	}
	if md.SystemID != nil {
		field("System", fmt.Sprintf("#%d", *md.SystemID))
	}

	b.WriteString("\n")
	if len(md.People) == 0 {
		b.WriteString(styles.help.Render("No people linked"))
	} else {
		b.WriteString(styles.label.Render("People:"))
		for _, p := range md.People {
			name := p.PersonName
			if name == "" {
				name = fmt.Sprintf("#%d", p.PersonID)
			}
			fmt.Fprintf(&b, "\n  • %s (%s)", name, p.Role)
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.exporter != nil && len(md.People) > 0 {
		helpKeys = []key.Binding{m.keys.export, m.keys.back, m.keys.quit}
	}
	return fmt.Sprintf("%s\n\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Export reports for the people of '%s'?", m.selected.Title))
	info := fmt.Sprintf("\nPeople: %d\nFormat: %s\n", len(m.selected.People), exportFormat(m.opts))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Reports")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchReport:
		phase = fmt.Sprintf("Fetching reports (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteReport:
		phase = fmt.Sprintf("Writing reports (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.WriteManifest:
		phase = "Writing manifest..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf(
		"\nReports: %d/%d\nDirectory: %s\nManifest: %s",
		m.result.SuccessfulExports,
		m.result.TotalPeople,
		m.result.OutputDirectory,
		m.result.ManifestPath,
	)

	var failed string
	if m.result.FailedExports > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed to export %d reports:", m.result.FailedExports))
		for _, res := range m.result.Results {
			if res.Error != nil {
				failed += fmt.Sprintf("\n  • %s: %v", res.PersonName, res.Error)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}

// nextPlatform cycles all → vimeo → youtube → all.
func nextPlatform(p models.Platform) models.Platform {
	if p == "" {
		return models.Platforms[0]
	}
	for i, candidate := range models.Platforms {
		if candidate == p && i+1 < len(models.Platforms) {
			return models.Platforms[i+1]
		}
	}
	return ""
}

// personIDs returns the distinct person ids of links in order of appearance.
func personIDs(links []models.MediaPersonLink) []int64 {
	seen := make(map[int64]bool, len(links))
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		if !seen[l.PersonID] {
			seen[l.PersonID] = true
			ids = append(ids, l.PersonID)
		}
	}
	return ids
}

func exportFormat(opts tasks.BulkExportOpts) string {
	if opts.Format == "" {
		return "csv"
	}
	return string(opts.Format)
}
