package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

type memoryPrefs map[string]string

func (p memoryPrefs) GetOr(_ context.Context, key, fallback string) string {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

func (p memoryPrefs) Set(_ context.Context, key, value string) error {
	p[key] = value
	return nil
}

// failAfter accepts n writes and fails every later one.
type failAfter struct {
	n   int
	buf bytes.Buffer
}

func (w *failAfter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("write failed")
	}
	w.n--
	return w.buf.Write(p)
}

type cliFixture struct {
	fb     *tu.FakeBackend
	member models.Member
	runner *Runner
	out    *bytes.Buffer
	prefs  memoryPrefs
}

func newCLIFixture(t *testing.T, signedIn bool) *cliFixture {
	t.Helper()
	fb := tu.NewFakeBackend(t)
	member, token := fb.AddMember(models.Member{Name: "Ada Lovelace", Email: "ada@example.com", Handle: "ada"}, "secret12")
	fb.AddMovie(models.Movie{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"})
	fb.AddMovie(models.Movie{ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15"})

	cfg := shared.DefaultConfig()
	cfg.Backend.Environment = "dev"
	cfg.Backend.DevURL = fb.URL

	sess := session.New(session.Opts{Env: cfg.Env()})
	if signedIn {
		if err := sess.SetToken(context.Background(), token); err != nil {
			t.Fatalf("failed to store token: %v", err)
		}
	}

	out := &bytes.Buffer{}
	prefs := memoryPrefs{}
	runner := NewRunner(RunnerOpts{
		Config:  cfg,
		Session: sess,
		Prefs:   prefs,
		Logger:  shared.DiscardLogger(),
		Output:  out,
	})
	t.Cleanup(func() { runner.Close() })

	return &cliFixture{fb: fb, member: member, runner: runner, out: out, prefs: prefs}
}

func (f *cliFixture) run(args ...string) error {
	app := &cli.Command{Name: "shelf", Commands: f.runner.register()}
	return app.Run(context.Background(), append([]string{"shelf"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			sess := session.New(session.Opts{})
			prefs := memoryPrefs{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Session:    sess,
				Prefs:      prefs,
				Logger:     logger,
				Output:     output,
			})
			defer runner.Close()

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.session != sess {
				t.Error("expected session to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.backend == nil || runner.public == nil || runner.auth == nil || runner.engine == nil {
				t.Error("expected client stack to be built")
			}
			if runner.cache.Bus() != runner.bus {
				t.Error("expected cache to publish on the runner bus")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			defer runner.Close()

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			defer runner.Close()

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			defer runner.Close()

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil session uses config environment", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Backend.Environment = "prod"
			runner := NewRunner(RunnerOpts{Config: config})
			defer runner.Close()

			if runner.session.Env() != shared.EnvProd {
				t.Errorf("expected prod session, got %s", runner.session.Env())
			}
		})
	})

	t.Run("locale", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.UI.Locale = "en"

		runner := NewRunner(RunnerOpts{Config: config})
		defer runner.Close()
		if got := runner.locale(); got != "en" {
			t.Errorf("expected config locale without preferences, got %q", got)
		}

		prefs := memoryPrefs{repositories.PrefLocale: "pt-BR"}
		runner = NewRunner(RunnerOpts{Config: config, Prefs: prefs})
		defer runner.Close()
		if got := runner.locale(); got != "pt-BR" {
			t.Errorf("expected stored locale, got %q", got)
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			defer runner.Close()

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			defer runner.Close()

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			defer runner.Close()

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			defer runner.Close()

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &failAfter{n: 1}})
			defer runner.Close()

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			defer runner.Close()

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			defer runner.Close()

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\ndone\n" {
				t.Errorf("expected %q, got %q", "\ndone\n", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			defer runner.Close()

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		defer runner.Close()
		commands := runner.register()

		names := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "member", "favorites", "follow", "reviews", "media", "locale", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Login Stores Token", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("auth", "login", "--email", "ada@example.com", "--password", "secret12"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "Signed in as @ada") {
			t.Errorf("unexpected output %q", f.out.String())
		}
		if !f.runner.session.HasToken(context.Background()) {
			t.Error("expected token to be stored")
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run("auth", "login", "--email", "ada@example.com", "--password", "wrong-pass")
		if err == nil {
			t.Fatal("expected login to fail")
		}
		if f.runner.session.HasToken(context.Background()) {
			t.Error("no token expected after failed login")
		}
	})

	t.Run("Status Without Token Makes No Request", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "unauthenticated") {
			t.Errorf("expected unauthenticated state, got %q", f.out.String())
		}
		if n := f.fb.CallCount(http.MethodGet, "/auth/verifyToken"); n != 0 {
			t.Errorf("expected no verify call, got %d", n)
		}
	})

	t.Run("Status JSON", func(t *testing.T) {
		f := newCLIFixture(t, true)

		if err := f.run("auth", "status", "--json"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		var status authStatus
		if err := json.Unmarshal(f.out.Bytes(), &status); err != nil {
			t.Fatalf("invalid JSON %q: %v", f.out.String(), err)
		}
		if status.State != "authenticated" || status.Member == nil || status.Member.Handle != "ada" {
			t.Errorf("unexpected status %+v", status)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		f := newCLIFixture(t, true)

		if err := f.run("auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if f.runner.session.HasToken(context.Background()) {
			t.Error("expected token to be removed")
		}
	})

	t.Run("Whoami Requires Sign In", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run("auth", "whoami")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Register And Reset", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run("auth", "register", "--name", "Grace Hopper", "--email", "grace@example.com",
			"--password", "cobol1959", "--handle", "grace")
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "Created @grace") {
			t.Errorf("unexpected output %q", f.out.String())
		}

		if err := f.run("auth", "forgot", "grace@example.com"); err != nil {
			t.Fatalf("forgot failed: %v", err)
		}
		token := f.fb.ResetToken("grace@example.com")
		if token == "" {
			t.Fatal("expected a reset token to be issued")
		}
		if err := f.run("auth", "reset", "--token", token, "--password", "fortran1957"); err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if err := f.run("auth", "login", "--email", "grace@example.com", "--password", "fortran1957"); err != nil {
			t.Errorf("expected login with new password, got %v", err)
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	matrix := models.MovieRef(603)

	t.Run("Add Then Remove", func(t *testing.T) {
		f := newCLIFixture(t, true)

		if err := f.run("favorites", "add", "movie:603"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !f.fb.IsFavorite(f.member.ID, matrix) {
			t.Error("expected favorite on the backend")
		}
		if fav, ok := f.runner.cache.Get(f.member.ID, matrix); !ok || !fav {
			t.Error("expected confirmed state in the cache")
		}

		if err := f.run("favorites", "remove", "movie:603"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if f.fb.IsFavorite(f.member.ID, matrix) {
			t.Error("expected favorite removed")
		}
	})

	t.Run("Invalid Ref", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run("favorites", "add", "movie:abc")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Check", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fb.SetFavorite(f.member.ID, matrix, true)

		if err := f.run("favorites", "check", "--json", "--type", "movie", "--id", "603", "--id", "604", "--id", "x"); err != nil {
			t.Fatalf("check failed: %v", err)
		}

		var rows []checkRow
		if err := json.Unmarshal(f.out.Bytes(), &rows); err != nil {
			t.Fatalf("invalid JSON %q: %v", f.out.String(), err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		if rows[0].Ref != "movie:603" || !rows[0].Favorite {
			t.Errorf("unexpected first row %+v", rows[0])
		}
		if rows[1].Favorite || rows[1].Error != "" {
			t.Errorf("unexpected second row %+v", rows[1])
		}
		if rows[2].Error == "" {
			t.Error("expected invalid id to be reported")
		}
	})

	t.Run("List", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fb.SetFavorite(f.member.ID, matrix, true)

		if err := f.run("favorites", "list", "--type", "movie"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		out := f.out.String()
		for _, want := range []string{"@ada", "The Matrix"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("Export", func(t *testing.T) {
		f := newCLIFixture(t, true)
		f.fb.SetFavorite(f.member.ID, matrix, true)
		dir := filepath.Join(t.TempDir(), "export")

		if err := f.run("favorites", "export", "--format", "markdown", "--output", dir); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "README.md"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if readme := tu.MustReadFile(t, filepath.Join(dir, "README.md")); !strings.Contains(readme, "The Matrix") {
			t.Errorf("expected title in README:\n%s", readme)
		}
	})
}

func TestFollowCommands(t *testing.T) {
	t.Run("Follow Increments Count", func(t *testing.T) {
		f := newCLIFixture(t, true)
		bob, _ := f.fb.AddMember(models.Member{Name: "Bob", Email: "bob@example.com", Handle: "bob"}, "secret12")

		if err := f.run("follow", "add", "@bob"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "Following @bob") || !strings.Contains(out, "1 followers") {
			t.Errorf("unexpected output %q", out)
		}

		f.out.Reset()
		if err := f.run("follow", "list", "--json", "bob"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		var lists followLists
		if err := json.Unmarshal(f.out.Bytes(), &lists); err != nil {
			t.Fatalf("invalid JSON %q: %v", f.out.String(), err)
		}
		if lists.Member.ID != bob.ID || len(lists.Followers) != 1 || lists.Followers[0].Handle != "ada" {
			t.Errorf("unexpected lists %+v", lists)
		}
	})

	t.Run("Unknown Status Reloads Count", func(t *testing.T) {
		f := newCLIFixture(t, true)
		bob, _ := f.fb.AddMember(models.Member{Name: "Bob", Email: "bob@example.com", Handle: "bob"}, "secret12")
		f.fb.SetFollow(f.member.ID, bob.ID, true)
		f.fb.FailNext(http.MethodGet, "/followers/is-following/"+strconv.FormatInt(bob.ID, 10), http.StatusInternalServerError)

		if err := f.run("follow", "add", "bob"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "1 followers") || strings.Contains(out, "2 followers") {
			t.Errorf("expected the server total, got %q", out)
		}
	})

	t.Run("Cannot Follow Self", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run("follow", "add", "ada")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Status", func(t *testing.T) {
		f := newCLIFixture(t, true)
		bob, _ := f.fb.AddMember(models.Member{Name: "Bob", Email: "bob@example.com", Handle: "bob"}, "secret12")
		f.fb.SetFollow(f.member.ID, bob.ID, true)

		if err := f.run("follow", "status", "bob"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "You follow @bob") {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})
}

func TestMemberCommands(t *testing.T) {
	t.Run("Update Sends Given Fields Only", func(t *testing.T) {
		f := newCLIFixture(t, true)

		if err := f.run("member", "update", "--bio", "First programmer"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if m := f.runner.session.Member(); m == nil || m.Bio != "First programmer" || m.Name != "Ada Lovelace" {
			t.Errorf("unexpected member after update %+v", m)
		}
	})

	t.Run("Update Without Flags", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run("member", "update")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("View Is Public", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("member", "view", "--json", "ada"); err != nil {
			t.Fatalf("view failed: %v", err)
		}
		var profile memberProfile
		if err := json.Unmarshal(f.out.Bytes(), &profile); err != nil {
			t.Fatalf("invalid JSON %q: %v", f.out.String(), err)
		}
		if profile.Member == nil || profile.Member.ID != f.member.ID || profile.Counts == nil {
			t.Errorf("unexpected profile %+v", profile)
		}
	})
}

func TestReviewsCommands(t *testing.T) {
	t.Run("Add Prints Refreshed Average", func(t *testing.T) {
		f := newCLIFixture(t, true)

		if err := f.run("reviews", "add", "--rating", "4", "--text", "Still holds up", "movie:603"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "4.0 (1 reviews)") {
			t.Errorf("expected refreshed average, got %q", f.out.String())
		}
	})

	t.Run("Invalid Rating", func(t *testing.T) {
		f := newCLIFixture(t, true)

		err := f.run("reviews", "add", "--rating", "4.3", "movie:603")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Average Without Reviews", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("reviews", "average", "movie:603"); err != nil {
			t.Fatalf("average failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "no reviews yet") {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})
}

func TestMediaAndLocaleCommands(t *testing.T) {
	t.Run("Movie JSON", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("media", "movie", "--json", "603"); err != nil {
			t.Fatalf("movie failed: %v", err)
		}
		if !strings.Contains(f.out.String(), "The Matrix") {
			t.Errorf("unexpected output %q", f.out.String())
		}
	})

	t.Run("Movie Id Must Be Numeric", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run("media", "movie", "matrix")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("media", "search", "--type", "movie", "reloaded"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		out := f.out.String()
		if !strings.Contains(out, "The Matrix Reloaded") || !strings.Contains(out, "movie:604") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Locale Is Sent As Accept-Language", func(t *testing.T) {
		f := newCLIFixture(t, false)

		if err := f.run("locale", "set", "fr-CA"); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		f.out.Reset()
		if err := f.run("locale", "get"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got := strings.TrimSpace(f.out.String()); got != "fr-CA" {
			t.Errorf("expected fr-CA, got %q", got)
		}

		if err := f.run("media", "movie", "--json", "603"); err != nil {
			t.Fatalf("movie failed: %v", err)
		}
		var sent string
		for _, c := range f.fb.Calls() {
			if c.Path == "/movie/603" {
				sent = c.Header.Get("Accept-Language")
			}
		}
		if sent != "fr-CA" {
			t.Errorf("expected Accept-Language fr-CA, got %q", sent)
		}
	})

	t.Run("Locale Rejects Garbage", func(t *testing.T) {
		f := newCLIFixture(t, false)

		err := f.run("locale", "set", "not a tag")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("Config", func(t *testing.T) {
		f := newCLIFixture(t, false)
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := f.run("setup", "config", "--output", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}

		if err := f.run("setup", "config", "--output", path); err == nil {
			t.Error("expected an error when the file exists")
		}
	})

	t.Run("Database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "shelf.db")

		cfg := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\nmax_open_conns = 1\nmax_idle_conns = 1\n"
		if err := os.WriteFile(configPath, []byte(cfg), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{ConfigPath: configPath, Logger: shared.DiscardLogger(), Output: &bytes.Buffer{}})
		defer runner.Close()
		app := &cli.Command{Name: "shelf", Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"shelf", "setup", "database"}); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
	})
}

func TestErrorFields(t *testing.T) {
	t.Run("Plain Error", func(t *testing.T) {
		err := errors.New("boom")
		if got := errorFields(err); len(got) != 2 || got[1] != err {
			t.Errorf("unexpected fields %v", got)
		}
	})

	t.Run("HTTP Error Carries Status", func(t *testing.T) {
		err := fmt.Errorf("failed to load @bob: %w", &shared.HTTPError{StatusCode: http.StatusNotFound})
		got := errorFields(err)
		if len(got) != 4 || got[2] != "status" || got[3] != http.StatusNotFound {
			t.Errorf("unexpected fields %v", got)
		}
	})
}
