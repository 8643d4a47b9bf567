package models

import "time"

// Library is a snapshot of a member's favorites, resolved to displayable items.
type Library struct {
	Handle     string      `json:"handle"`
	ExportedAt time.Time   `json:"exportedAt"`
	Items      []MediaItem `json:"items"`
}

// Count returns the number of items of type t.
func (l *Library) Count(t MediaType) int {
	n := 0
	for _, it := range l.Items {
		if it.Ref.Type == t {
			n++
		}
	}
	return n
}

// ByType returns the items of type t in library order.
func (l *Library) ByType(t MediaType) []MediaItem {
	var out []MediaItem
	for _, it := range l.Items {
		if it.Ref.Type == t {
			out = append(out, it)
		}
	}
	return out
}
