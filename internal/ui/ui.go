package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/events"
	"github.com/desertthunder/shelf/internal/favorites"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	LibraryView
	DetailView
)

// Backend is the API surface the browser uses.
type Backend interface {
	favorites.Backend
	events.AverageFetcher
	Reviews(ctx context.Context, ref models.MediaRef) ([]models.Review, error)
}

// Opts are the dependencies of the TUI [Model].
type Opts struct {
	Backend  Backend
	Engine   *tasks.LibraryEngine
	Bus      *events.Bus
	Cache    *favorites.Cache
	MemberID int64
	Handle   string
}

// detail is the state of an open [DetailView]; it is discarded when the view closes.
type detail struct {
	gen     uint64
	item    models.MediaItem
	tracker *favorites.Tracker
	watcher *events.ReviewAverageWatcher
	cancel  context.CancelFunc
	avg     *models.ReviewAverage
	reviews []models.Review
	loading bool
	notice  string
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	opts         Opts
	view         ViewState
	width        int
	height       int
	list         list.Model
	listReady    bool
	library      *models.Library
	failed       int
	favorite     map[models.MediaRef]bool
	filter       int // index into models.MediaTypes, -1 for all
	progressChan chan tasks.ProgressUpdate
	loadDone     chan libraryLoadedMsg
	progress     tasks.ProgressUpdate
	result       *tasks.LibraryResult
	detail       *detail
	detailGen    uint64
	spinner      spinner.Model
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok
	return &Model{
		ctx:      ctx,
		opts:     opts,
		view:     LoadingView,
		favorite: make(map[models.MediaRef]bool),
		filter:   -1,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts loading the library.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoad())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.list.SetSize(max(0, msg.Width-4), max(0, msg.Height-8))
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case libraryLoadedMsg:
		m.progressChan, m.loadDone = nil, nil
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.result = msg.result
		m.library = msg.result.Library
		m.failed = len(msg.result.Failed)
		m.view = LibraryView
		return m, m.checkFavorites()

	case favoriteCheckedMsg:
		for _, s := range msg.statuses {
			if s.Err == nil {
				m.favorite[s.Ref] = s.Favorite
			}
		}
		m.rebuildList()
		return m, nil

	case favoriteMountedMsg:
		if d := m.current(msg.gen); d != nil {
			d.loading = false
			d.err = msg.err
		}
		return m, nil

	case favoriteToggledMsg:
		if d := m.current(msg.gen); d != nil {
			if msg.err != nil {
				d.notice = styles.err.Render("Couldn't update favorite: " + msg.err.Error())
			} else {
				d.notice = ""
				m.favorite[d.item.Ref] = msg.favorite
			}
		}
		return m, nil

	case reviewsLoadedMsg:
		if d := m.current(msg.gen); d != nil {
			d.reviews = msg.reviews
			if msg.err != nil {
				d.notice = styles.warn.Render("Reviews unavailable")
			}
		}
		return m, nil

	case averageMsg:
		if d := m.current(msg.gen); d != nil {
			avg := msg.avg
			d.avg = &avg
			return m, m.waitForAverage(d)
		}
		return m, nil
	}

	if m.view == LibraryView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case LibraryView:
		return m.renderLibrary()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

// Close unmounts the open detail view, if any.
func (m *Model) Close() {
	m.closeDetail()
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.filter):
		m.filter++
		if m.filter >= len(models.MediaTypes) {
			m.filter = -1
		}
		m.rebuildList()
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.view = LoadingView
		return m, tea.Batch(m.spinner.Tick, m.startLoad())
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.list.SelectedItem().(mediaItem); ok {
			return m, m.openDetail(selected.item)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.closeDetail()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeDetail()
		m.rebuildList()
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.fav):
		return m, m.toggleFavorite()
	}
	return m, nil
}

// current returns the open detail if gen still identifies it.
func (m *Model) current(gen uint64) *detail {
	if m.detail == nil || m.detail.gen != gen {
		return nil
	}
	return m.detail
}

func (m *Model) rebuildList() {
	if m.library == nil {
		return
	}

	var source []models.MediaItem
	title := "All favorites"
	if m.filter >= 0 {
		t := models.MediaTypes[m.filter]
		source = m.library.ByType(t)
		title = "Favorite " + t.Plural()
	} else {
		source = m.library.Items
	}

	items := make([]list.Item, len(source))
	for i, it := range source {
		items[i] = mediaItem{item: it, favorite: m.favorite[it.Ref]}
	}

	if !m.listReady {
		m.list = list.New(items, list.NewDefaultDelegate(), max(0, m.width-4), max(0, m.height-8))
		m.listReady = true
	} else {
		m.list.SetItems(items)
	}
	if m.opts.Handle != "" {
		title = fmt.Sprintf("@%s • %s", m.opts.Handle, title)
	}
	m.list.Title = title
}

func (m *Model) startLoad() tea.Cmd {
	if m.opts.Engine == nil {
		return func() tea.Msg {
			return libraryLoadedMsg{err: fmt.Errorf("library engine not initialized")}
		}
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan libraryLoadedMsg, 1)
	m.progressChan, m.loadDone = progress, done

	go func() {
		result, err := m.opts.Engine.Library(m.ctx, progress, nil, tasks.LibraryOpts{Handle: m.opts.Handle, Resolve: true})
		done <- libraryLoadedMsg{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.loadDone
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

type favoriteCheckedMsg struct {
	statuses []favorites.Status
}

// checkFavorites resolves the star of every library item. Library items are favorites when the
// library is loaded, but the check keeps the stars honest after toggles elsewhere.
func (m *Model) checkFavorites() tea.Cmd {
	if m.library == nil {
		return nil
	}
	for _, it := range m.library.Items {
		m.favorite[it.Ref] = true
	}
	m.rebuildList()
	if m.opts.Backend == nil {
		return nil
	}

	lib := m.library
	return func() tea.Msg {
		var all []favorites.Status
		for _, t := range models.MediaTypes {
			items := lib.ByType(t)
			if len(items) == 0 {
				continue
			}
			ids := make([]string, len(items))
			for i, it := range items {
				ids[i] = it.Ref.ID
			}
			statuses, err := favorites.CheckMany(m.ctx, m.opts.Backend, t, ids, favorites.CheckOpts{
				Cache:    m.opts.Cache,
				MemberID: m.opts.MemberID,
			})
			if err != nil {
				break
			}
			all = append(all, statuses...)
		}
		return favoriteCheckedMsg{statuses: all}
	}
}

func (m *Model) openDetail(item models.MediaItem) tea.Cmd {
	m.closeDetail()
	m.detailGen++

	ctx, cancel := context.WithCancel(m.ctx)
	d := &detail{
		gen:     m.detailGen,
		item:    item,
		cancel:  cancel,
		loading: true,
		tracker: favorites.NewTracker(m.opts.Backend, item.Ref, favorites.TrackerOpts{
			Cache:    m.opts.Cache,
			MemberID: m.opts.MemberID,
		}),
	}
	m.detail = d
	m.view = DetailView

	cmds := []tea.Cmd{
		func() tea.Msg {
			return favoriteMountedMsg{gen: d.gen, err: d.tracker.Mount(ctx)}
		},
		func() tea.Msg {
			reviews, err := m.opts.Backend.Reviews(ctx, item.Ref)
			return reviewsLoadedMsg{gen: d.gen, reviews: reviews, err: err}
		},
	}

	if m.opts.Bus != nil {
		w, err := events.WatchReviewAverage(ctx, m.opts.Bus, m.opts.Backend, item.Ref, nil)
		if err == nil {
			d.watcher = w
			cmds = append(cmds, m.waitForAverage(d))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) waitForAverage(d *detail) tea.Cmd {
	if d.watcher == nil {
		return nil
	}
	w, gen := d.watcher, d.gen
	return func() tea.Msg {
		select {
		case avg := <-w.Updates():
			return averageMsg{gen: gen, avg: avg}
		case <-w.Done():
			return nil
		}
	}
}

func (m *Model) toggleFavorite() tea.Cmd {
	d := m.detail
	if d == nil {
		return nil
	}
	gen, tracker := d.gen, d.tracker
	return func() tea.Msg {
		fav, err := tracker.Toggle(m.ctx)
		return favoriteToggledMsg{gen: gen, favorite: fav, err: err}
	}
}

func (m *Model) closeDetail() {
	if m.detail == nil {
		return
	}
	if fav, known := m.detail.tracker.Favorite(); known {
		m.favorite[m.detail.item.Ref] = fav
	}
	m.detail.tracker.Unmount()
	m.detail.cancel()
	m.detail = nil
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading favorites")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchFavorites:
		phase = fmt.Sprintf("Listing favorites (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ResolveItems:
		phase = fmt.Sprintf("Resolving titles (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Connecting..."
	}

	return fmt.Sprintf("%s\n\n%s %s\n%s", title, m.spinner.View(), phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderLibrary() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.filter, m.keys.reload, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	status := ""
	if m.failed > 0 {
		status = "\n" + styles.warn.Render(fmt.Sprintf("%d items could not be resolved", m.failed))
	}
	return fmt.Sprintf("%s%s\n\n%s", m.list.View(), status, helpView)
}

func (m *Model) renderDetail() string {
	d := m.detail
	if d == nil {
		return ""
	}

	title := d.item.Title
	if title == "" {
		title = d.item.Ref.String()
	}

	fav, known := d.tracker.Favorite()
	star := favoriteMark(fav, known, d.err != nil)

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	if d.item.Subtitle != "" {
		b.WriteString("\n" + d.item.Subtitle)
	}
	b.WriteString("\n" + star)
	if d.avg != nil {
		b.WriteString("\n" + formatter.RenderAverage(*d.avg))
	}
	if d.notice != "" {
		b.WriteString("\n" + d.notice)
	}
	b.WriteString("\n\n" + formatter.RenderReviews(d.reviews))

	helpKeys := []key.Binding{m.keys.fav, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", styles.card.Render(b.String()), m.help.ShortHelpView(helpKeys))
}
