package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/midias/internal/models"
	"github.com/desertthunder/midias/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgMediaFetched MsgKind = iota
	MsgDetailFetched
	MsgProgressUpdate
	MsgExportComplete
)

type mediaFetched struct {
	media []models.Media
	err   error
}

type detailFetched struct {
	media *models.Media
	err   error
}

type exportComplete struct {
	result *tasks.BulkExportResult
	err    error
}

// mediaFetchedMsg is the constructor for [MsgMediaFetched]
func mediaFetchedMsg(media []models.Media, err error) Msg {
	return Msg{kind: MsgMediaFetched, data: mediaFetched{media, err}}
}

// detailFetchedMsg is the constructor for [MsgDetailFetched]
func detailFetchedMsg(media *models.Media, err error) Msg {
	return Msg{kind: MsgDetailFetched, data: detailFetched{media, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportComplete{result, err}}
}
