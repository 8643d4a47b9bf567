package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaType enumerates the catalogued entity kinds.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
	MediaAlbum  MediaType = "album"
)

// MediaTypes lists every [MediaType] in display order.
var MediaTypes = []MediaType{MediaMovie, MediaSeries, MediaAlbum}

// ParseMediaType accepts singular and plural spellings ("movies", "albums", "tv").
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return MediaMovie, nil
	case "series", "tv", "show", "shows":
		return MediaSeries, nil
	case "album", "albums":
		return MediaAlbum, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Numeric reports whether identifiers of this type are integers.
func (t MediaType) Numeric() bool {
	return t == MediaMovie || t == MediaSeries
}

// Plural is the path segment used by the favorites endpoints.
func (t MediaType) Plural() string {
	switch t {
	case MediaMovie:
		return "movies"
	case MediaAlbum:
		return "albums"
	default:
		return string(t)
	}
}

// MediaRef identifies one catalogued item. It is comparable and usable as a map key.
type MediaRef struct {
	Type MediaType `json:"type"`
	ID   string    `json:"id"`
}

// NewMediaRef validates id against the identifier rules of t.
func NewMediaRef(t MediaType, id string) (MediaRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MediaRef{}, fmt.Errorf("empty %s id", t)
	}
	switch t {
	case MediaMovie, MediaSeries:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil || n <= 0 {
			return MediaRef{}, fmt.Errorf("%s id must be a positive integer, got %q", t, id)
		}
		return MediaRef{Type: t, ID: strconv.FormatInt(n, 10)}, nil
	case MediaAlbum:
		return MediaRef{Type: t, ID: id}, nil
	default:
		return MediaRef{}, fmt.Errorf("unknown media type %q", t)
	}
}

// ParseMediaRef parses "type:id", e.g. "movie:603" or "album:4aawyAB9vmqN3uQ7FjRGTy".
func ParseMediaRef(s string) (MediaRef, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok {
		return MediaRef{}, fmt.Errorf("media reference %q must look like type:id", s)
	}
	t, err := ParseMediaType(typ)
	if err != nil {
		return MediaRef{}, err
	}
	return NewMediaRef(t, id)
}

// MovieRef, SeriesRef and AlbumRef build refs from known-good identifiers.
func MovieRef(id int64) MediaRef { return MediaRef{Type: MediaMovie, ID: strconv.FormatInt(id, 10)} }
func SeriesRef(id int64) MediaRef { return MediaRef{Type: MediaSeries, ID: strconv.FormatInt(id, 10)} }
func AlbumRef(id string) MediaRef { return MediaRef{Type: MediaAlbum, ID: id} }

func (r MediaRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// Topic is the event-bus topic for this ref.
func (r MediaRef) Topic(prefix string) string {
	return prefix + "." + string(r.Type) + "." + r.ID
}

// Movie is a TMDB-backed film summary.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	ReleaseDate string  `json:"releaseDate,omitempty"`
	PosterPath  string  `json:"posterPath,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
}

// Ref returns the [MediaRef] of the movie.
func (m Movie) Ref() MediaRef { return MovieRef(m.ID) }

// Series is a TMDB-backed TV series summary.
type Series struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview,omitempty"`
	FirstAirDate string  `json:"firstAirDate,omitempty"`
	PosterPath   string  `json:"posterPath,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
}

// Ref returns the [MediaRef] of the series.
func (s Series) Ref() MediaRef { return SeriesRef(s.ID) }

// Album is a Spotify-backed album summary.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	TotalTracks int    `json:"totalTracks,omitempty"`
}

// Ref returns the [MediaRef] of the album.
func (a Album) Ref() MediaRef { return AlbumRef(a.ID) }

// MediaItem is the common view of any catalogued item, used by lists and the TUI.
type MediaItem struct {
	Ref      MediaRef `json:"ref"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
}

// Item converts the movie for list rendering.
func (m Movie) Item() MediaItem {
	return MediaItem{Ref: m.Ref(), Title: m.Title, Subtitle: year(m.ReleaseDate)}
}

// Item converts the series for list rendering.
func (s Series) Item() MediaItem {
	return MediaItem{Ref: s.Ref(), Title: s.Name, Subtitle: year(s.FirstAirDate)}
}

// Item converts the album for list rendering.
func (a Album) Item() MediaItem {
	sub := a.Artist
	if y := year(a.ReleaseDate); y != "" {
		sub = strings.TrimSpace(sub + " (" + y + ")")
	}
	return MediaItem{Ref: a.Ref(), Title: a.Name, Subtitle: sub}
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}
