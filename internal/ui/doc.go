// Package ui implements an interactive terminal browser for the media catalog using bubbletea's Elm architecture.
//
// The TUI walks through these views:
//  1. [MediaListView] : Browse media, newest first, cycling the platform filter with p
//  2. [DetailView] : Inspect one item and the people linked to it
//  3. [ConfirmView] : Confirm exporting a report for each linked person
//  4. [ExportView] : Monitor progress updates from the report engine
//  5. [ResultView] : Display the export summary and failed reports
//
// The [Model] reads through a [Catalog], which is either the local database or a remote server,
// and exports through an [Exporter]. Progress flows through a channel from the exporter.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, p, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
