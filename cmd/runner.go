package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/auth"
	"github.com/desertthunder/shelf/internal/events"
	"github.com/desertthunder/shelf/internal/favorites"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Preferences is the key/value store for UI preferences such as the locale.
type Preferences interface {
	GetOr(ctx context.Context, key, fallback string) string
	Set(ctx context.Context, key, value string) error
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	session    *session.Session
	backend    *services.Backend
	public     *services.Backend // anonymous, for the public catalogue endpoints
	auth       *auth.Manager
	prefs      Preferences
	bus        *events.Bus
	cache      *favorites.Cache
	engine     *tasks.LibraryEngine
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Session    *session.Session
	Prefs      Preferences
	Bus        *events.Bus
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Session == nil {
		opts.Session = session.New(session.Opts{Env: opts.Config.Env(), Logger: opts.Logger})
	}
	if opts.Bus == nil {
		opts.Bus = events.NewBus(opts.Logger)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		session:    opts.Session,
		prefs:      opts.Prefs,
		bus:        opts.Bus,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	clientOpts := services.ClientOptsFromConfig(r.config, r.session, r.logger, r.locale)
	r.backend = services.NewBackend(services.NewClient(clientOpts))

	clientOpts.Anonymous = true
	r.public = services.NewBackend(services.NewClient(clientOpts))

	r.auth = auth.NewManager(r.backend, r.session, r.logger)
	r.cache = favorites.NewCache(r.bus, r.logger)
	r.engine = tasks.NewLibraryEngine(r.backend, r.public, r.logger)

	// cached favorites belong to the member that just signed out
	r.session.OnClear(func(error) { r.cache.Reset() })
	return r
}

// Close releases the event bus.
func (r *Runner) Close() error {
	return r.bus.Close()
}

// locale returns the stored locale preference, falling back to the configured default.
func (r *Runner) locale() string {
	if r.prefs == nil {
		return r.config.UI.Locale
	}
	return r.prefs.GetOr(context.Background(), repositories.PrefLocale, r.config.UI.Locale)
}

// requireMember determines the auth state and returns the signed-in member.
func (r *Runner) requireMember(ctx context.Context) (*models.Member, error) {
	if r.auth.State() == auth.StateUnknown {
		if err := r.auth.Bootstrap(ctx); err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
	}
	if r.auth.State() != auth.StateAuthenticated {
		return nil, fmt.Errorf("%w: run 'shelf auth login' first", shared.ErrNotAuthenticated)
	}
	m := r.auth.Member()
	if m == nil {
		return nil, fmt.Errorf("%w: member record missing", shared.ErrNotAuthenticated)
	}
	return m, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, memberCommand, favoritesCommand, followCommand,
		reviewsCommand, mediaCommand, localeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// errorFields describes err for the top-level error report, with the HTTP status when there is one.
func errorFields(err error) []any {
	fields := []any{"error", err}
	if status := shared.StatusCode(err); status != 0 {
		fields = append(fields, "status", status)
	}
	return fields
}
