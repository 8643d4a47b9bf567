package testing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// Call records one request received by a [FakeBackend].
type Call struct {
	Method string
	Path   string
	Auth   string
	Header http.Header
}

// FakeBackend is an in-memory stand-in for the cataloguing REST backend.
//
// It keeps members, tokens, favorites, follows and reviews, records every call, and supports
// one-shot failure injection ([FakeBackend.FailNext]) and request gating ([FakeBackend.Gate]).
type FakeBackend struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int64
	members   map[int64]*models.Member
	passwords map[string]string
	tokens    map[string]int64
	favorites map[int64]map[models.MediaRef]bool
	follows   map[models.FollowEdge]bool
	reviews   []models.Review
	movies    map[int64]models.Movie
	series    map[int64]models.Series
	albums    map[string]models.Album
	resets    map[string]string
	calls     []Call
	failures  map[string][]int
	gates     map[string]*gate
}

type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

// NewFakeBackend starts a fake backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		members:   make(map[int64]*models.Member),
		passwords: make(map[string]string),
		tokens:    make(map[string]int64),
		favorites: make(map[int64]map[models.MediaRef]bool),
		follows:   make(map[models.FollowEdge]bool),
		movies:    make(map[int64]models.Movie),
		series:    make(map[int64]models.Series),
		albums:    make(map[string]models.Album),
		resets:    make(map[string]string),
		failures:  make(map[string][]int),
		gates:     make(map[string]*gate),
	}
	fb.Server = httptest.NewServer(fb.routes())
	t.Cleanup(fb.Close)
	return fb
}

func (fb *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(fb.record)

	r.Post("/member/login", fb.login)
	r.Post("/member/register", fb.register)
	r.Post("/member/password/forgot", fb.forgotPassword)
	r.Post("/member/password/reset", fb.resetPassword)
	r.Get("/auth/verifyToken", fb.authed(fb.verifyToken))

	r.Get("/member/me", fb.authed(fb.me))
	r.Put("/member/me", fb.authed(fb.updateMe))
	r.Get("/member/handle/{handle}", fb.memberByHandle)

	r.Get("/member/favorites/{type}", fb.authed(fb.listFavorites))
	r.Get("/member/favorites/{type}/{id}", fb.authed(fb.isFavorite))
	r.Post("/member/favorites/{type}", fb.authed(fb.addFavorite))
	r.Delete("/member/favorites/{type}/{id}", fb.authed(fb.removeFavorite))

	r.Get("/followers/is-following/{id}", fb.authed(fb.isFollowing))
	r.Post("/followers/{id}", fb.authed(fb.follow))
	r.Delete("/followers/{id}", fb.authed(fb.unfollow))
	r.Get("/followers/{id}/followers", fb.followersOf)
	r.Get("/followers/{id}/following", fb.followingOf)
	r.Get("/followers/{id}/counts", fb.counts)

	r.Get("/review/member/{id}", fb.memberReviews)
	r.Get("/review/{type}/{id}", fb.itemReviews)
	r.Get("/review/{type}/{id}/average", fb.itemAverage)
	r.Post("/review", fb.authed(fb.createReview))

	r.Get("/movie/search", fb.searchMovies)
	r.Get("/movie/{id}", fb.movie)
	r.Get("/series/search", fb.searchSeries)
	r.Get("/series/{id}", fb.seriesByID)
	r.Get("/spotify/search", fb.searchAlbums)
	r.Get("/spotify/album/{id}", fb.album)

	return r
}

// record logs the call, applies injected failures and waits on gates.
func (fb *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		fb.mu.Lock()
		fb.calls = append(fb.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Header: r.Header.Clone(),
		})
		var status int
		if queued := fb.failures[key]; len(queued) > 0 {
			status, fb.failures[key] = queued[0], queued[1:]
		}
		g := fb.gates[key]
		fb.mu.Unlock()

		if g != nil {
			g.once.Do(func() { close(g.entered) })
			select {
			case <-g.release:
			case <-r.Context().Done():
				return
			}
		}

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authed resolves the bearer token to a member ID or answers 401.
func (fb *FakeBackend) authed(h func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		fb.mu.Lock()
		id, known := fb.tokens[token]
		fb.mu.Unlock()
		if !ok || !known {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		h(w, r, id)
	}
}

// AddMember registers a member with a password and returns an issued token.
func (fb *FakeBackend) AddMember(m models.Member, password string) (models.Member, string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if m.ID == 0 {
		fb.nextID++
		m.ID = fb.nextID + 100
	}
	cp := m
	fb.members[m.ID] = &cp
	fb.passwords[m.Email] = password
	token := fmt.Sprintf("tok-%d-%d", m.ID, len(fb.tokens))
	fb.tokens[token] = m.ID
	return m, token
}

// RevokeTokens invalidates every token issued for memberID.
func (fb *FakeBackend) RevokeTokens(memberID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for tok, id := range fb.tokens {
		if id == memberID {
			delete(fb.tokens, tok)
		}
	}
}

// AcceptToken makes token valid for memberID (e.g. a JWT minted by the test).
func (fb *FakeBackend) AcceptToken(token string, memberID int64) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens[token] = memberID
}

// AddMovie, AddSeries and AddAlbum seed the catalogue.
func (fb *FakeBackend) AddMovie(m models.Movie) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.movies[m.ID] = m
}

func (fb *FakeBackend) AddSeries(s models.Series) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.series[s.ID] = s
}

func (fb *FakeBackend) AddAlbum(a models.Album) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.albums[a.ID] = a
}

// SetFavorite seeds a favorite directly, bypassing the API.
func (fb *FakeBackend) SetFavorite(memberID int64, ref models.MediaRef, on bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.setFavoriteLocked(memberID, ref, on)
}

// IsFavorite reports the server-side favorite state.
func (fb *FakeBackend) IsFavorite(memberID int64, ref models.MediaRef) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.favorites[memberID][ref]
}

// SetFollow seeds a follow edge directly.
func (fb *FakeBackend) SetFollow(follower, followed int64, on bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	edge := models.FollowEdge{FollowerID: follower, FollowedID: followed}
	if on {
		fb.follows[edge] = true
	} else {
		delete(fb.follows, edge)
	}
}

// ResetToken returns the password-reset token issued for email, if any.
func (fb *FakeBackend) ResetToken(email string) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.resets[email]
}

// FailNext makes the next request to "METHOD /path" answer with status. Calls queue up.
func (fb *FakeBackend) FailNext(method, path string, status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	key := method + " " + path
	fb.failures[key] = append(fb.failures[key], status)
}

// Gate blocks requests to "METHOD /path" until release is called.
// entered is closed when the first request arrives.
func (fb *FakeBackend) Gate(method, path string) (entered <-chan struct{}, release func()) {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	fb.mu.Lock()
	fb.gates[method+" "+path] = g
	fb.mu.Unlock()

	var once sync.Once
	return g.entered, func() {
		once.Do(func() {
			fb.mu.Lock()
			delete(fb.gates, method+" "+path)
			fb.mu.Unlock()
			close(g.release)
		})
	}
}

// Calls returns a copy of the recorded calls.
func (fb *FakeBackend) Calls() []Call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Call(nil), fb.calls...)
}

// CallCount counts calls matching method and path.
func (fb *FakeBackend) CallCount(method, path string) int {
	n := 0
	for _, c := range fb.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathInt(r *http.Request, name string) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return n, err == nil
}

func pathRef(r *http.Request) (models.MediaRef, error) {
	t, err := models.ParseMediaType(chi.URLParam(r, "type"))
	if err != nil {
		return models.MediaRef{}, err
	}
	return models.NewMediaRef(t, chi.URLParam(r, "id"))
}

func (fb *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	if pw, ok := fb.passwords[creds.Email]; !ok || pw != creds.Password {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	for id, m := range fb.members {
		if m.Email == creds.Email {
			token := fmt.Sprintf("tok-%d-%d", id, len(fb.tokens))
			fb.tokens[token] = id
			writeJSON(w, http.StatusOK, models.LoginResponse{Token: token})
			return
		}
	}
	http.Error(w, "invalid credentials", http.StatusUnauthorized)
}

func (fb *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	if _, taken := fb.passwords[reg.Email]; taken {
		fb.mu.Unlock()
		http.Error(w, "email taken", http.StatusConflict)
		return
	}
	fb.mu.Unlock()

	m, _ := fb.AddMember(models.Member{
		Name:      reg.Name,
		Email:     reg.Email,
		Handle:    reg.Handle,
		BirthDate: reg.BirthDate,
		Gender:    reg.Gender,
	}, reg.Password)
	writeJSON(w, http.StatusCreated, m)
}

func (fb *FakeBackend) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("email") == "" {
		http.Error(w, "email required", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")

	fb.mu.Lock()
	if _, ok := fb.passwords[email]; ok {
		fb.resets[email] = fmt.Sprintf("reset-%d", len(fb.resets)+1)
	}
	fb.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) resetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	token, password := r.PostForm.Get("token"), r.PostForm.Get("password")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for email, t := range fb.resets {
		if t == token && token != "" {
			fb.passwords[email] = password
			delete(fb.resets, email)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.Error(w, "invalid reset token", http.StatusBadRequest)
}

func (fb *FakeBackend) verifyToken(w http.ResponseWriter, _ *http.Request, _ int64) {
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (fb *FakeBackend) me(w http.ResponseWriter, _ *http.Request, id int64) {
	fb.mu.Lock()
	m, ok := fb.members[id]
	var cp models.Member
	if ok {
		cp = *m
	}
	fb.mu.Unlock()

	if !ok {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

// updateMe applies the update with server-side normalisation (trimmed strings).
func (fb *FakeBackend) updateMe(w http.ResponseWriter, r *http.Request, id int64) {
	var upd models.MemberUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	m, ok := fb.members[id]
	if !ok {
		http.Error(w, "member not found", http.StatusNotFound)
		return
	}
	if upd.Handle != nil {
		handle := strings.ToLower(strings.TrimSpace(*upd.Handle))
		for otherID, other := range fb.members {
			if otherID != id && other.Handle == handle {
				http.Error(w, "handle taken", http.StatusConflict)
				return
			}
		}
		m.Handle = handle
	}
	if upd.Name != nil {
		m.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Bio != nil {
		m.Bio = strings.TrimSpace(*upd.Bio)
	}
	if upd.BirthDate != nil {
		m.BirthDate = *upd.BirthDate
	}
	if upd.Gender != nil {
		m.Gender = *upd.Gender
	}
	if upd.ProfileImageURL != nil {
		m.ProfileImageURL = *upd.ProfileImageURL
	}
	writeJSON(w, http.StatusOK, *m)
}

func (fb *FakeBackend) memberByHandle(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, m := range fb.members {
		if m.Handle == handle {
			writeJSON(w, http.StatusOK, *m)
			return
		}
	}
	http.Error(w, "member not found", http.StatusNotFound)
}

func (fb *FakeBackend) setFavoriteLocked(memberID int64, ref models.MediaRef, on bool) {
	set := fb.favorites[memberID]
	if set == nil {
		set = make(map[models.MediaRef]bool)
		fb.favorites[memberID] = set
	}
	if on {
		set[ref] = true
	} else {
		delete(set, ref)
	}
}

func (fb *FakeBackend) listFavorites(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := models.ParseMediaType(chi.URLParam(r, "type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	var ids []string
	for ref := range fb.favorites[id] {
		if ref.Type == t {
			ids = append(ids, ref.ID)
		}
	}
	fb.mu.Unlock()
	sort.Strings(ids)

	out := make([]any, 0, len(ids))
	for _, s := range ids {
		if t.Numeric() {
			n, _ := strconv.ParseInt(s, 10, 64)
			out = append(out, n)
		} else {
			out = append(out, s)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": out})
}

func (fb *FakeBackend) isFavorite(w http.ResponseWriter, r *http.Request, id int64) {
	ref, err := pathRef(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fb.IsFavorite(id, ref)})
}

func (fb *FakeBackend) addFavorite(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := models.ParseMediaType(chi.URLParam(r, "type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	raw := strings.Trim(string(body.ID), `"`)
	if t.Numeric() && strings.HasPrefix(string(body.ID), `"`) {
		http.Error(w, "numeric id expected", http.StatusBadRequest)
		return
	}
	ref, err := models.NewMediaRef(t, raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fb.SetFavorite(id, ref, true)
	w.WriteHeader(http.StatusCreated)
}

func (fb *FakeBackend) removeFavorite(w http.ResponseWriter, r *http.Request, id int64) {
	ref, err := pathRef(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fb.SetFavorite(id, ref, false)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) isFollowing(w http.ResponseWriter, r *http.Request, id int64) {
	target, ok := pathInt(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	fb.mu.Lock()
	following := fb.follows[models.FollowEdge{FollowerID: id, FollowedID: target}]
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

func (fb *FakeBackend) follow(w http.ResponseWriter, r *http.Request, id int64) {
	target, ok := pathInt(r, "id")
	if !ok || target == id {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	fb.SetFollow(id, target, true)
	w.WriteHeader(http.StatusCreated)
}

func (fb *FakeBackend) unfollow(w http.ResponseWriter, r *http.Request, id int64) {
	target, ok := pathInt(r, "id")
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	fb.SetFollow(id, target, false)
	w.WriteHeader(http.StatusNoContent)
}

func (fb *FakeBackend) edges(pick func(models.FollowEdge) (int64, bool)) []models.Member {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []models.Member
	for edge := range fb.follows {
		if other, ok := pick(edge); ok {
			if m, found := fb.members[other]; found {
				out = append(out, *m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (fb *FakeBackend) followersOf(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	writeJSON(w, http.StatusOK, fb.edges(func(e models.FollowEdge) (int64, bool) {
		return e.FollowerID, e.FollowedID == id
	}))
}

func (fb *FakeBackend) followingOf(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	writeJSON(w, http.StatusOK, fb.edges(func(e models.FollowEdge) (int64, bool) {
		return e.FollowedID, e.FollowerID == id
	}))
}

func (fb *FakeBackend) counts(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	fb.mu.Lock()
	var c models.FollowCounts
	for edge := range fb.follows {
		if edge.FollowedID == id {
			c.Followers++
		}
		if edge.FollowerID == id {
			c.Following++
		}
	}
	fb.mu.Unlock()
	writeJSON(w, http.StatusOK, c)
}

func (fb *FakeBackend) filterReviews(keep func(models.Review) bool) []models.Review {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := []models.Review{}
	for _, rv := range fb.reviews {
		if keep(rv) {
			out = append(out, rv)
		}
	}
	return out
}

func (fb *FakeBackend) memberReviews(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	writeJSON(w, http.StatusOK, fb.filterReviews(func(rv models.Review) bool { return rv.MemberID == id }))
}

func (fb *FakeBackend) itemReviews(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, fb.filterReviews(func(rv models.Review) bool {
		return rv.MediaType == ref.Type && rv.MediaID == ref.ID
	}))
}

func (fb *FakeBackend) itemAverage(w http.ResponseWriter, r *http.Request) {
	ref, err := pathRef(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reviews := fb.filterReviews(func(rv models.Review) bool {
		return rv.MediaType == ref.Type && rv.MediaID == ref.ID
	})
	avg := models.ReviewAverage{MediaType: ref.Type, MediaID: ref.ID, Count: len(reviews)}
	for _, rv := range reviews {
		avg.Average += rv.Rating
	}
	if avg.Count > 0 {
		avg.Average /= float64(avg.Count)
	}
	writeJSON(w, http.StatusOK, avg)
}

func (fb *FakeBackend) createReview(w http.ResponseWriter, r *http.Request, id int64) {
	var in models.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	rv := models.Review{
		ID:        int64(len(fb.reviews) + 1),
		MemberID:  id,
		MediaType: in.MediaType,
		MediaID:   in.MediaID,
		Rating:    in.Rating,
		Text:      strings.TrimSpace(in.Text),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(len(fb.reviews)) * time.Hour),
	}
	if m, ok := fb.members[id]; ok {
		rv.Handle = m.Handle
	}
	fb.reviews = append(fb.reviews, rv)
	writeJSON(w, http.StatusCreated, rv)
}

func (fb *FakeBackend) movie(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	fb.mu.Lock()
	m, ok := fb.movies[id]
	fb.mu.Unlock()
	if !ok {
		http.Error(w, "movie not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (fb *FakeBackend) seriesByID(w http.ResponseWriter, r *http.Request) {
	id, _ := pathInt(r, "id")
	fb.mu.Lock()
	s, ok := fb.series[id]
	fb.mu.Unlock()
	if !ok {
		http.Error(w, "series not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (fb *FakeBackend) album(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	a, ok := fb.albums[chi.URLParam(r, "id")]
	fb.mu.Unlock()
	if !ok {
		http.Error(w, "album not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func matches(q, s string) bool {
	return q == "" || strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

func (fb *FakeBackend) searchMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	fb.mu.Lock()
	out := []models.Movie{}
	for _, m := range fb.movies {
		if matches(q, m.Title) {
			out = append(out, m)
		}
	}
	fb.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (fb *FakeBackend) searchSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	fb.mu.Lock()
	out := []models.Series{}
	for _, s := range fb.series {
		if matches(q, s.Name) {
			out = append(out, s)
		}
	}
	fb.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (fb *FakeBackend) searchAlbums(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	fb.mu.Lock()
	out := []models.Album{}
	for _, a := range fb.albums {
		if matches(q, a.Name) || matches(q, a.Artist) {
			out = append(out, a)
		}
	}
	fb.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}
