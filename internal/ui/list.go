package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/midias/internal/models"
)

var (
	_ list.Item = mediaItem{}
)

// mediaItem wraps [models.Media] to implement [list.Item].
type mediaItem struct {
	media models.Media
}

func (i mediaItem) FilterValue() string { return i.media.Title }
func (i mediaItem) Title() string       { return i.media.Title }
func (i mediaItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.media.PublishedAt, i.media.Platform)
	if n := len(i.media.People); n > 0 {
		desc = fmt.Sprintf("%s • %d people", desc, n)
	}
	return desc
}

func mediaItems(media []models.Media) []list.Item {
	items := make([]list.Item, len(media))
	for i, m := range media {
		items[i] = mediaItem{media: m}
	}
	return items
}
