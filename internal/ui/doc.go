// Package ui implements an interactive favorites browser using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [LoadingView] : Fetch and resolve the member's favorites with live progress
//  2. [LibraryView] : Browse favorites, tab cycles the media type filter
//  3. [DetailView] : Show one item with its rating summary and reviews; f toggles the favorite
//
// The detail view mounts a favorites.Tracker and an events.ReviewAverageWatcher for the selected
// item and unmounts both when the view is left, so late responses never reach the model.
// Progress updates flow through a channel from the LibraryEngine, like the CLI.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, f, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
