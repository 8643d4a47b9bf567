package models

import "testing"

func TestParseMediaRef(t *testing.T) {
	tt := []struct {
		name    string
		in      string
		want    MediaRef
		wantErr bool
	}{
		{name: "movie", in: "movie:603", want: MediaRef{Type: MediaMovie, ID: "603"}},
		{name: "plural series", in: "tv:1399", want: MediaRef{Type: MediaSeries, ID: "1399"}},
		{name: "album keeps string id", in: "albums:4aawyAB9vmqN3uQ7FjRGTy", want: MediaRef{Type: MediaAlbum, ID: "4aawyAB9vmqN3uQ7FjRGTy"}},
		{name: "leading zeros normalised", in: "movie:0042", want: MediaRef{Type: MediaMovie, ID: "42"}},
		{name: "non numeric movie", in: "movie:abc", wantErr: true},
		{name: "negative id", in: "series:-1", wantErr: true},
		{name: "missing separator", in: "movie603", wantErr: true},
		{name: "unknown type", in: "book:1", wantErr: true},
		{name: "empty id", in: "album: ", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMediaRef(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseMediaRef(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseMediaRef(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestMediaRef(t *testing.T) {
	t.Run("String And Topic", func(t *testing.T) {
		ref := MovieRef(603)
		if ref.String() != "movie:603" {
			t.Errorf("String() = %s", ref.String())
		}
		if ref.Topic("review") != "review.movie.603" {
			t.Errorf("Topic() = %s", ref.Topic("review"))
		}
	})

	t.Run("Plural", func(t *testing.T) {
		if MediaMovie.Plural() != "movies" || MediaSeries.Plural() != "series" || MediaAlbum.Plural() != "albums" {
			t.Error("unexpected plural path segment")
		}
	})

	t.Run("Items", func(t *testing.T) {
		a := Album{ID: "x", Name: "Kid A", Artist: "Radiohead", ReleaseDate: "2000-10-02"}
		if a.Item().Subtitle != "Radiohead (2000)" {
			t.Errorf("album subtitle = %q", a.Item().Subtitle)
		}
		m := Movie{ID: 1, Title: "Heat", ReleaseDate: "1995-12-15"}
		if m.Item().Subtitle != "1995" || m.Item().Ref != MovieRef(1) {
			t.Errorf("unexpected movie item %+v", m.Item())
		}
	})
}

func TestMemberUpdateEmpty(t *testing.T) {
	if !(MemberUpdate{}).Empty() {
		t.Error("zero update should be empty")
	}
	bio := "hi"
	if (MemberUpdate{Bio: &bio}).Empty() {
		t.Error("update with bio should not be empty")
	}
}

func TestMemberKey(t *testing.T) {
	var m *Member
	if m.Key() != "" {
		t.Error("nil member key should be empty")
	}
	if (&Member{ID: 7}).Key() != "7" {
		t.Error("expected key 7")
	}
}

func TestLibrary(t *testing.T) {
	lib := &Library{Items: []MediaItem{
		{Ref: MovieRef(603), Title: "The Matrix"},
		{Ref: AlbumRef("x"), Title: "Global Warming"},
		{Ref: MovieRef(604), Title: "The Matrix Reloaded"},
	}}

	if n := lib.Count(MediaMovie); n != 2 {
		t.Errorf("expected 2 movies, got %d", n)
	}
	if n := lib.Count(MediaSeries); n != 0 {
		t.Errorf("expected no series, got %d", n)
	}
	movies := lib.ByType(MediaMovie)
	if len(movies) != 2 || movies[1].Title != "The Matrix Reloaded" {
		t.Errorf("unexpected movies %+v", movies)
	}
}
