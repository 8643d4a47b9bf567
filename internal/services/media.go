package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

type searchResults[T any] struct {
	Results []T `json:"results"`
}

// Movie fetches a movie summary.
func (b *Backend) Movie(ctx context.Context, id int64) (*models.Movie, error) {
	var m models.Movie
	if err := b.FetchJSON(ctx, mediaPath("/", models.MovieRef(id)), FetchOpts{}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Series fetches a series summary.
func (b *Backend) Series(ctx context.Context, id int64) (*models.Series, error) {
	var s models.Series
	if err := b.FetchJSON(ctx, mediaPath("/", models.SeriesRef(id)), FetchOpts{}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Album fetches an album summary.
func (b *Backend) Album(ctx context.Context, id string) (*models.Album, error) {
	var a models.Album
	if err := b.FetchJSON(ctx, "/spotify/album/"+url.PathEscape(id), FetchOpts{}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Lookup resolves any ref to its list item.
func (b *Backend) Lookup(ctx context.Context, ref models.MediaRef) (models.MediaItem, error) {
	switch ref.Type {
	case models.MediaMovie, models.MediaSeries:
		n, err := parseRefID(ref)
		if err != nil {
			return models.MediaItem{}, err
		}
		if ref.Type == models.MediaMovie {
			m, err := b.Movie(ctx, n)
			if err != nil {
				return models.MediaItem{}, err
			}
			return m.Item(), nil
		}
		s, err := b.Series(ctx, n)
		if err != nil {
			return models.MediaItem{}, err
		}
		return s.Item(), nil
	case models.MediaAlbum:
		a, err := b.Album(ctx, ref.ID)
		if err != nil {
			return models.MediaItem{}, err
		}
		return a.Item(), nil
	default:
		return models.MediaItem{}, fmt.Errorf("%w: media type %q", shared.ErrInvalidArgument, ref.Type)
	}
}

func parseRefID(ref models.MediaRef) (int64, error) {
	n, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s id %q", shared.ErrInvalidArgument, ref.Type, ref.ID)
	}
	return n, nil
}

func searchQuery(q string) (url.Values, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return url.Values{"query": {q}}, nil
}

// SearchMovies searches the movie catalogue.
func (b *Backend) SearchMovies(ctx context.Context, q string) ([]models.Movie, error) {
	query, err := searchQuery(q)
	if err != nil {
		return nil, err
	}
	var resp searchResults[models.Movie]
	if err := b.FetchJSON(ctx, "/movie/search", FetchOpts{Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SearchSeries searches the series catalogue.
func (b *Backend) SearchSeries(ctx context.Context, q string) ([]models.Series, error) {
	query, err := searchQuery(q)
	if err != nil {
		return nil, err
	}
	var resp searchResults[models.Series]
	if err := b.FetchJSON(ctx, "/series/search", FetchOpts{Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SearchAlbums searches the album catalogue.
func (b *Backend) SearchAlbums(ctx context.Context, q string) ([]models.Album, error) {
	query, err := searchQuery(q)
	if err != nil {
		return nil, err
	}
	var resp searchResults[models.Album]
	if err := b.FetchJSON(ctx, "/spotify/search", FetchOpts{Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Search runs the search matching t and returns list items.
func (b *Backend) Search(ctx context.Context, t models.MediaType, q string) ([]models.MediaItem, error) {
	var items []models.MediaItem
	switch t {
	case models.MediaMovie:
		res, err := b.SearchMovies(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, m := range res {
			items = append(items, m.Item())
		}
	case models.MediaSeries:
		res, err := b.SearchSeries(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, s := range res {
			items = append(items, s.Item())
		}
	case models.MediaAlbum:
		res, err := b.SearchAlbums(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, a := range res {
			items = append(items, a.Item())
		}
	default:
		return nil, fmt.Errorf("%w: media type %q", shared.ErrInvalidArgument, t)
	}
	return items, nil
}
