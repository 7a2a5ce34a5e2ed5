/*
Package tui implements the interactive search screen.

The screen has two states. The search state shows a text input with live
suggestions, or the recent list when the input is blank. The results state
shows repositories for the submitted term and pages in more as the cursor
reaches the end. Choosing a repository ends the program and hands its page
route back to the caller.
*/
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/khanglvm/gh-repo-search/internal/github"
	"github.com/khanglvm/gh-repo-search/internal/history"
	"github.com/khanglvm/gh-repo-search/internal/route"
	"github.com/khanglvm/gh-repo-search/internal/storage"
	"github.com/khanglvm/gh-repo-search/internal/suggest"
)

type screen int

const (
	screenSearch screen = iota
	screenResults
)

// SearchRecorder receives an analytics record for each executed search.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, search storage.SearchRecord) error
}

// Option configures the Model.
type Option func(*Model)

// WithRecorder records each search's first page.
func WithRecorder(r SearchRecorder) Option {
	return func(m *Model) { m.recorder = r }
}

// WithMaxResults caps how many repositories are paged in.
func WithMaxResults(n int) Option {
	return func(m *Model) { m.maxResults = n }
}

// WithListLimit sets how many recent searches are shown.
func WithListLimit(n int) Option {
	return func(m *Model) { m.listLimit = n }
}

// WithSuggestLimit sets the maximum number of suggestions.
func WithSuggestLimit(n int) Option {
	return func(m *Model) { m.suggestLimit = n }
}

// WithDebounce sets the suggestion quiet period.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// row is one line of the list under the input.
type row struct {
	query string
	date  time.Time
	// raw is the typed text itself, shown when nothing matches
	raw bool
}

// Model is the bubbletea model for the interactive screen.
type Model struct {
	ctx      context.Context
	store    *history.Store
	searcher github.Searcher
	recorder SearchRecorder
	logger   *log.Logger

	maxResults   int
	listLimit    int
	suggestLimit int
	debounce     time.Duration

	session *suggest.Session
	updates chan []history.Record

	screen  screen
	input   textinput.Model
	spinner spinner.Model
	styles  styles
	cursor  int // -1 selects the input
	status  string

	// results state
	term         string
	pager        *github.Pager
	fetchGen     int
	results      []github.Repository
	total        int
	resultCursor int
	loading      bool
	err          error

	width  int
	height int

	route    route.Route
	quitting bool
}

// New creates the model. The store is shared with the caller.
func New(ctx context.Context, store *history.Store, searcher github.Searcher, opts ...Option) *Model {
	input := textinput.New()
	input.Placeholder = "Search repositories"
	input.Prompt = "🔍 "
	input.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		ctx:          ctx,
		store:        store,
		searcher:     searcher,
		logger:       log.Default(),
		maxResults:   github.DefaultMaxItems,
		listLimit:    history.DefaultListLimit,
		suggestLimit: suggest.DefaultLimit,
		updates:      make(chan []history.Record, 1),
		input:        input,
		spinner:      sp,
		styles:       defaultStyles(),
		cursor:       -1,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.input.PromptStyle = m.styles.prompt
	m.session = suggest.NewSession(store,
		suggest.WithLimit(m.suggestLimit),
		suggest.WithInterval(m.debounce),
		suggest.WithSessionLogger(m.logger),
		suggest.WithOnUpdate(func(list []history.Record) {
			notify(m.updates, list)
		}),
	)

	m.input.Focus()
	m.session.Focus()
	return m
}

// Route returns where the user chose to go. It is zero if they quit.
func (m *Model) Route() route.Route {
	return m.route
}

// Close stops pending suggestion work.
func (m *Model) Close() {
	m.session.Close()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForSuggestions(m.updates))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-6)
		return m, nil

	case suggestionsMsg:
		m.clampCursor()
		return m, waitForSuggestions(m.updates)

	case pageMsg:
		return m.handlePage(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.screen == screenResults {
			return m.updateResults(msg)
		}
		return m.updateSearch(msg)
	}

	if m.screen == screenSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if !m.input.Focused() {
			m.quitting = true
			return m, tea.Quit
		}
		m.input.Blur()
		m.session.Blur()
		m.cursor = -1
		return m, nil

	case "enter":
		rows := m.rows()
		if m.cursor >= 0 && m.cursor < len(rows) && !rows[m.cursor].raw {
			return m, m.navigate(m.session.Select(m.ctx, rows[m.cursor].query))
		}
		return m, m.navigate(m.session.Submit(m.ctx))

	case "down", "tab":
		m.moveCursor(1)
		return m, nil

	case "up", "shift+tab":
		m.moveCursor(-1)
		return m, nil

	case "ctrl+d":
		rows := m.rows()
		if m.cursor < 0 || m.cursor >= len(rows) || rows[m.cursor].raw {
			return m, nil
		}
		if err := m.store.Remove(m.ctx, rows[m.cursor].query); err != nil {
			m.status = fmt.Sprintf("Could not delete %q: %v", rows[m.cursor].query, err)
			return m, nil
		}
		m.status = ""
		m.session.Refresh()
		m.clampCursor()
		return m, nil

	case "ctrl+x":
		if err := m.store.Clear(m.ctx); err != nil {
			m.status = fmt.Sprintf("Could not clear recent searches: %v", err)
			return m, nil
		}
		m.status = ""
		m.session.Refresh()
		m.cursor = -1
		return m, nil
	}

	var cmds []tea.Cmd
	if !m.input.Focused() {
		cmds = append(cmds, m.input.Focus())
		m.session.Focus()
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if m.input.Value() != prev {
		m.session.OnInputChange(m.input.Value())
		m.cursor = -1
	}
	return m, tea.Batch(cmds...)
}

// navigate moves to the results screen for r. A storage failure is shown
// but does not stop the search.
func (m *Model) navigate(r route.Route, err error) tea.Cmd {
	if history.IsInvalidInput(err) {
		return nil
	}
	if err != nil {
		if r.IsZero() {
			m.status = err.Error()
			return nil
		}
		m.status = fmt.Sprintf("Could not save recent search: %v", err)
	} else {
		m.status = ""
	}

	m.input.SetValue(m.session.Input())
	m.input.Blur()
	m.cursor = -1
	return m.startResults(r.Term)
}

func (m *Model) startResults(term string) tea.Cmd {
	m.screen = screenResults
	m.term = term
	m.pager = github.NewPager(m.searcher, term, m.maxResults)
	m.fetchGen++
	m.results = nil
	m.total = 0
	m.resultCursor = 0
	m.loading = false
	m.err = nil

	return tea.Batch(m.spinner.Tick, m.fetchNext())
}

// fetchNext loads the following page unless one is in flight or the pager
// is done. The pager is only touched by the command while loading is set.
func (m *Model) fetchNext() tea.Cmd {
	if m.loading || m.pager == nil || !m.pager.HasMore() {
		return nil
	}
	m.loading = true

	ctx, pager, recorder, gen := m.ctx, m.pager, m.recorder, m.fetchGen
	return func() tea.Msg {
		first := pager.Page() == 0
		items, err := pager.Next(ctx)
		if err == nil && first && recorder != nil {
			recorder.RecordSearch(ctx, storage.NewSearchRecord(pager.Term(), len(items), pager.TotalCount()))
		}
		return pageMsg{gen: gen, items: items, total: pager.TotalCount(), err: err}
	}
}

func (m *Model) handlePage(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.fetchGen {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		m.logger.Warn("failed to load results", "term", m.term, "err", msg.err)
		return m, nil
	}
	m.err = nil
	m.total = msg.total
	m.results = append(m.results, msg.items...)
	if len(m.results) > m.maxResults {
		m.results = m.results[:m.maxResults]
	}
	return m, nil
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.screen = screenSearch
		m.fetchGen++
		m.loading = false
		cmd := m.input.Focus()
		m.session.Focus()
		return m, cmd

	case "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
		return m, nil

	case "down", "j":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
		if m.resultCursor >= len(m.results)-1 {
			return m, m.startFetch()
		}
		return m, nil

	case "n":
		return m, m.startFetch()

	case "r":
		if m.err != nil {
			m.err = nil
			return m, m.startFetch()
		}
		return m, nil

	case "enter":
		if m.resultCursor >= len(m.results) {
			return m, nil
		}
		repo := m.results[m.resultCursor]
		r, err := route.ToWebPage(repo.HTMLURL, repoName(repo))
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.route = r
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) startFetch() tea.Cmd {
	cmd := m.fetchNext()
	if cmd == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, cmd)
}

// rows returns the list currently shown under the input.
func (m *Model) rows() []row {
	text := strings.TrimSpace(m.input.Value())
	if m.input.Focused() && text != "" {
		list := m.session.Suggestions()
		if len(list) == 0 {
			return []row{{query: text, raw: true}}
		}
		rows := make([]row, len(list))
		for i, r := range list {
			rows[i] = row{query: r.Query, date: r.LastUsedAt}
		}
		return rows
	}

	recent := m.store.List(m.listLimit)
	rows := make([]row, len(recent))
	for i, r := range recent {
		rows[i] = row{query: r.Query, date: r.LastUsedAt}
	}
	return rows
}

func (m *Model) moveCursor(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.cursor = -1
		return
	}
	// positions -1..n-1, wrapping
	m.cursor = (m.cursor+1+delta+n+1)%(n+1) - 1
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = n - 1
	}
}

func repoName(r github.Repository) string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner.Login + "/" + r.Name
}
