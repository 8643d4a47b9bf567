package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/goccy/go-json"
)

// mediaID decodes an identifier sent either as a JSON number or a string.
type mediaID string

func (id *mediaID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = mediaID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = mediaID(n.String())
	return nil
}

func favoritePath(ref models.MediaRef) string {
	return "/member/favorites/" + ref.Type.Plural() + "/" + url.PathEscape(ref.ID)
}

// favoriteBody encodes the id with the JSON type the backend expects for ref.Type.
func favoriteBody(ref models.MediaRef) (map[string]any, error) {
	if !ref.Type.Numeric() {
		return map[string]any{"id": ref.ID}, nil
	}
	n, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s id %q is not numeric", shared.ErrInvalidArgument, ref.Type, ref.ID)
	}
	return map[string]any{"id": n}, nil
}

// IsFavorite reports whether the session member favorited ref.
func (b *Backend) IsFavorite(ctx context.Context, ref models.MediaRef) (bool, error) {
	var resp struct {
		Favorite bool `json:"favorite"`
	}
	if err := b.FetchJSON(ctx, favoritePath(ref), FetchOpts{Auth: true}, &resp); err != nil {
		return false, err
	}
	return resp.Favorite, nil
}

// AddFavorite marks ref as a favorite.
func (b *Backend) AddFavorite(ctx context.Context, ref models.MediaRef) error {
	body, err := favoriteBody(ref)
	if err != nil {
		return err
	}
	_, err = b.Fetch(ctx, "/member/favorites/"+ref.Type.Plural(), FetchOpts{
		Auth:   true,
		Method: http.MethodPost,
		Body:   body,
	})
	return err
}

// RemoveFavorite unmarks ref.
func (b *Backend) RemoveFavorite(ctx context.Context, ref models.MediaRef) error {
	_, err := b.Fetch(ctx, favoritePath(ref), FetchOpts{Auth: true, Method: http.MethodDelete})
	return err
}

// SetFavorite adds or removes ref depending on on.
func (b *Backend) SetFavorite(ctx context.Context, ref models.MediaRef, on bool) error {
	if on {
		return b.AddFavorite(ctx, ref)
	}
	return b.RemoveFavorite(ctx, ref)
}

// Favorites lists the favorited refs of one media type.
func (b *Backend) Favorites(ctx context.Context, t models.MediaType) ([]models.MediaRef, error) {
	var resp struct {
		IDs []mediaID `json:"ids"`
	}
	if err := b.FetchJSON(ctx, "/member/favorites/"+t.Plural(), FetchOpts{Auth: true}, &resp); err != nil {
		return nil, err
	}

	refs := make([]models.MediaRef, 0, len(resp.IDs))
	for _, id := range resp.IDs {
		ref, err := models.NewMediaRef(t, string(id))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
