package services

import (
	"net/url"
	"strconv"

	"github.com/desertthunder/shelf/internal/models"
)

// Backend exposes the backend endpoints as typed methods.
type Backend struct {
	*Client
}

// NewBackend wraps c.
func NewBackend(c *Client) *Backend {
	return &Backend{Client: c}
}

func memberPath(prefix string, id int64, suffix string) string {
	return prefix + strconv.FormatInt(id, 10) + suffix
}

func mediaPath(prefix string, ref models.MediaRef) string {
	return prefix + string(ref.Type) + "/" + url.PathEscape(ref.ID)
}
