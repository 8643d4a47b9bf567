package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/formatter"
)

var styles = newPalette()

// palette holds the browser's styles. Headings and cards come from [formatter] so the TUI and
// the plain CLI output look alike.
type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	card  lipgloss.Style
}

func newPalette() *palette {
	return &palette{
		title: formatter.TitleStyle.MarginBottom(1),
		ok:    formatter.AccentStyle,
		err:   fg("#FF0000").Bold(true),
		warn:  fg("#FFA500"),
		help:  formatter.MutedStyle,
		card:  formatter.CardStyle,
	}
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// favoriteMark renders the detail view's favorite line for a tracker state.
func favoriteMark(favorite, known, failed bool) string {
	switch {
	case known && favorite:
		return formatter.StarStyle.Render("★ favorite")
	case known:
		return styles.help.Render("☆ not a favorite")
	case failed:
		return styles.warn.Render("favorite status unavailable")
	default:
		return styles.help.Render("checking…")
	}
}
