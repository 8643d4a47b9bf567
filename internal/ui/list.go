package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/shelf/internal/models"
)

var _ list.Item = mediaItem{}

// mediaItem wraps [models.MediaItem] to implement [list.Item].
type mediaItem struct {
	item     models.MediaItem
	favorite bool
}

func (i mediaItem) FilterValue() string { return i.item.Title }

func (i mediaItem) Title() string {
	title := i.item.Title
	if title == "" {
		title = i.item.Ref.String()
	}
	if i.favorite {
		return "★ " + title
	}
	return "☆ " + title
}

func (i mediaItem) Description() string {
	if i.item.Subtitle != "" {
		return string(i.item.Ref.Type) + " • " + i.item.Subtitle
	}
	return string(i.item.Ref.Type)
}
