package tasks

import (
	"fmt"

	"github.com/desertthunder/shelf/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchFavorites Phase = iota
	CheckFavorites
	ResolveItems
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchFavorites:
		return "fetch_favorites"
	case CheckFavorites:
		return "check_favorites"
	case ResolveItems:
		return "resolve_items"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

// Send delivers update without blocking. A nil channel is ignored.
func Send(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchFavoritesUpdate(step, total int, t models.MediaType) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching favorite %s...", t.Plural()),
	}
}

func foundFavoritesUpdate(step, total int, t models.MediaType, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found %d favorite %s", count, t.Plural()),
		Data:    count,
	}
}

// CheckedUpdate reports one resolved favorite status.
func CheckedUpdate(step, total int, ref models.MediaRef, favorite bool, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] %s", step, total, ref)
	switch {
	case err != nil:
		msg += fmt.Sprintf(" ✗ %v", err)
	case favorite:
		msg += " ★"
	}
	return ProgressUpdate{Phase: CheckFavorites, Step: step, Total: total, Message: msg, Data: ref}
}

func resolvedItemUpdate(step, total int, item models.MediaItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, item.Title),
		Data:    item,
	}
}

func resolveFailedUpdate(step, total int, ref models.MediaRef, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, ref, err),
	}
}

func writeExportUpdate(format, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %s export to %s...", format, path),
	}
}
