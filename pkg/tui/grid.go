package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pluqqy/itemgrid/pkg/drag"
	"github.com/pluqqy/itemgrid/pkg/files"
	"github.com/pluqqy/itemgrid/pkg/layout"
	"github.com/pluqqy/itemgrid/pkg/models"
	"github.com/pluqqy/itemgrid/pkg/selection"
	"github.com/pluqqy/itemgrid/pkg/source"
	"github.com/pluqqy/itemgrid/pkg/throttle"
	"github.com/pluqqy/itemgrid/pkg/window"
)

const (
	headerLines = 1
	infoLines   = 1
	// rowsLeft is the width of the cursor marker in front of every row
	rowsLeft  = 2
	wheelStep = 3

	// rows fetched around a record jumped to by key
	locateBefore = 20
	locateAfter  = 50
)

// GridOptions configures a GridModel
type GridOptions struct {
	Source   source.Source
	Store    files.ColumnStore
	Settings *models.Settings
	Logger   zerolog.Logger
	// SelectKey is scrolled to and selected once the grid starts
	SelectKey string
}

// GridModel shows a remotely paginated result set as a table. Rows are
// loaded on demand through a window.Manager; everything else is local
// state driven from Update.
type GridModel struct {
	src   source.Source
	store files.ColumnStore
	log   zerolog.Logger

	window    *window.Manager
	selection *selection.Controller
	drag      *drag.Machine
	view      *ViewController
	rows      viewport.Model

	columns   []models.Column
	persisted []models.Column
	tags      []models.ColoredTag

	keys     keyMap
	help     help.Model
	showHelp bool
	spinner  spinner.Model
	search   *SearchBar

	width     int
	height    int
	focused   bool
	highlight bool
	selectKey string
	throttle  time.Duration
}

// Messages
type fetchResultMsg struct {
	result window.Result
}

type settleMsg struct{}

type dragFlushMsg struct{}

type columnsSavedMsg struct {
	columns []models.Column
	err     error
}

type tagsSavedMsg struct {
	change selection.TagChange
	err    error
}

type trashedMsg struct {
	keys []string
	err  error
}

type insertedMsg struct {
	record models.Record
	err    error
}

// selectionCheckedMsg lists the selected keys that are gone from the
// result set of query.
type selectionCheckedMsg struct {
	query   models.Query
	missing []string
}

type locatedMsg struct {
	key      string
	query    models.Query
	index    int
	selectIt bool
	err      error
}

// HighlightMsg is broadcast when the highlight key goes down and when it
// is released by the next key or mouse event.
type HighlightMsg struct {
	On   bool
	Keys []string
}

// NewGridModel creates a grid over opts.Source
func NewGridModel(opts GridOptions) *GridModel {
	settings := opts.Settings
	if settings == nil {
		settings = models.DefaultSettings()
	}
	settings.ApplyDefaults()

	w := window.New(opts.Source, settings.Query(), window.Options{
		RetryLimit:        settings.Grid.RetryLimit,
		DegradedThreshold: settings.Grid.DegradedThreshold,
		Logger:            opts.Logger,
	})
	interval := time.Duration(settings.Grid.ThrottleMillis) * time.Millisecond

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorActive))

	m := &GridModel{
		src:       opts.Source,
		store:     opts.Store,
		log:       opts.Logger.With().Str("component", "grid").Logger(),
		window:    w,
		selection: selection.New(w),
		drag:      drag.New(throttle.New(interval, nil)),
		view:      NewViewController(settings.Grid.ScrollBuffer),
		rows:      viewport.New(0, 0),
		tags:      settings.TagColors,
		keys:      newKeyMap(settings.Grid.HighlightKey),
		help:      help.New(),
		spinner:   sp,
		search:    NewSearchBar(),
		selectKey: opts.SelectKey,
		throttle:  interval,
	}
	m.loadColumns()
	return m
}

// Close cancels every outstanding fetch
func (m *GridModel) Close() {
	m.window.Close()
}

func (m *GridModel) loadColumns() {
	var prefs []models.Column
	if m.store != nil {
		cols, err := m.store.LoadColumns()
		if err != nil {
			m.log.Warn().Err(err).Msg("could not load column layout, using defaults")
		} else {
			prefs = cols
		}
	}
	m.columns = normalizeColumns(layout.FromPreferences(prefs))
	m.persisted = m.columns
}

// normalizeColumns rescales the visible fractions of a full column list
func normalizeColumns(columns []models.Column) []models.Column {
	return layout.CommitResize(columns, layout.Normalize(layout.Visible(columns)))
}

// Columns returns the full column layout in display order
func (m *GridModel) Columns() []models.Column {
	return slices.Clone(m.columns)
}

// Selection returns the selection controller
func (m *GridModel) Selection() *selection.Controller {
	return m.selection
}

// Window returns the row window
func (m *GridModel) Window() *window.Manager {
	return m.window
}

// View controller
func (m *GridModel) Viewport() *ViewController {
	return m.view
}

// SetSize sets the area the grid renders into
func (m *GridModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.SetWidth(width)
	m.help.Width = width
	m.rows.Width = width
	m.rows.Height = m.rowsHeight()
	m.view.SetHeight(m.rows.Height)
}

func (m *GridModel) rowsHeight() int {
	h := m.height - headerLines - infoLines
	if m.showHelp {
		h -= lipgloss.Height(m.help.FullHelpView(m.keys.FullHelp()))
	}
	return max(h, 0)
}

// gridBounds returns the left edge and the width of the column area
func (m *GridModel) gridBounds() (int, int) {
	return rowsLeft, max(m.width-rowsLeft, 0)
}

func (m *GridModel) inGrid(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < headerLines+m.view.Height()
}

// IsRowLoaded reports whether row index holds a record
func (m *GridModel) IsRowLoaded(index int) bool {
	return m.window.IsLoaded(index)
}

// RowAt returns the row at index: the record when it is loaded, a
// placeholder otherwise.
func (m *GridModel) RowAt(index int) models.Row {
	if rec, ok := m.window.Record(index); ok {
		return models.LoadedRow{Index: index, Record: rec}
	}
	return models.PlaceholderRow{Index: index}
}

// LoadMoreRows requests rows [start, stop). Rows already loaded or in
// flight are not requested again.
func (m *GridModel) LoadMoreRows(start, stop int) tea.Cmd {
	return m.runFetches(m.window.RequestRange(start, stop))
}

func (m *GridModel) loadVisible() tea.Cmd {
	start, stop := m.view.LoadRange()
	return m.LoadMoreRows(start, stop)
}

func (m *GridModel) runFetches(fetches []window.Fetch) tea.Cmd {
	if len(fetches) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(fetches))
	for _, f := range fetches {
		cmds = append(cmds, func() tea.Msg {
			return fetchResultMsg{result: f.Run()}
		})
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) syncTotal() {
	total, ok := m.window.Total()
	m.view.SetTotal(total, ok)
}

func (m *GridModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadVisible()}
	if m.selectKey != "" {
		cmds = append(cmds, m.locate(m.selectKey, true))
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, m.loadVisible()

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.FocusMsg:
		m.focused = true
		if m.selection.Empty() {
			return m, m.afterMove(m.selection.SelectFirst())
		}
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		m.drag.Leave()
		return m, m.releaseHighlight()

	case fetchResultMsg:
		return m, m.handleFetchResult(msg)

	case locatedMsg:
		return m, m.handleLocated(msg)

	case selectionCheckedMsg:
		m.handleSelectionChecked(msg)
		return m, nil

	case insertedMsg:
		return m, m.handleInserted(msg)

	case columnsSavedMsg:
		return m, m.handleColumnsSaved(msg)

	case tagsSavedMsg:
		return m, m.handleTagsSaved(msg)

	case trashedMsg:
		return m, m.handleTrashed(msg)

	case dragFlushMsg:
		if m.drag.Active() {
			m.drag.Flush()
		}
		return m, nil

	case settleMsg:
		m.drag.Settle()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// cursor blinks and the like
	if m.search.Active() {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *GridModel) handleFetchResult(msg fetchResultMsg) tea.Cmd {
	out := m.window.Complete(msg.result)
	if out.Stale {
		return nil
	}
	var cmds []tea.Cmd
	if out.Err != nil {
		m.log.Warn().Err(out.Err).
			Str("span", msg.result.Fetch.Span.String()).
			Int("attempt", msg.result.Fetch.Attempt).
			Msg("page fetch failed")
	}
	switch out.Signal {
	case window.SignalDegraded:
		cmds = append(cmds, persistentStatus("⚠ Connection degraded: some items could not be loaded"))
	case window.SignalRestored:
		cmds = append(cmds, status("✓ Connection restored"))
	}
	cmds = append(cmds, m.runFetches(out.Fetches))
	if out.Err == nil {
		m.syncTotal()
	}
	if out.Applied {
		if index, ok := m.selection.Resume(); ok && index != selection.NoRecord {
			m.view.Focus(index)
			cmds = append(cmds, m.loadVisible())
		}
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.search.Active() {
		return m.handleSearchKey(msg)
	}

	var cmds []tea.Cmd
	if !key.Matches(msg, m.keys.highlight) {
		cmds = append(cmds, m.releaseHighlight())
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		cmds = append(cmds, m.navigate(-1, 1, false))
	case key.Matches(msg, m.keys.down):
		cmds = append(cmds, m.navigate(1, 1, false))
	case key.Matches(msg, m.keys.extendUp):
		cmds = append(cmds, m.navigate(-1, 1, true))
	case key.Matches(msg, m.keys.extendDown):
		cmds = append(cmds, m.navigate(1, 1, true))
	case key.Matches(msg, m.keys.pageUp):
		cmds = append(cmds, m.navigate(-1, max(m.view.Height(), 1), false))
	case key.Matches(msg, m.keys.pageDown):
		cmds = append(cmds, m.navigate(1, max(m.view.Height(), 1), false))
	case key.Matches(msg, m.keys.home):
		cmds = append(cmds, m.afterMove(m.selection.SelectFirst()))
	case key.Matches(msg, m.keys.end):
		cmds = append(cmds, m.afterMove(m.selection.SelectLast()))
	case key.Matches(msg, m.keys.trash):
		cmds = append(cmds, m.trashSelected())
	case key.Matches(msg, m.keys.newItem):
		cmds = append(cmds, m.newItem())
	case key.Matches(msg, m.keys.toggleTag):
		n, err := strconv.Atoi(msg.String())
		if err == nil {
			cmds = append(cmds, m.toggleTag(n-1))
		}
	case key.Matches(msg, m.keys.clearTags):
		cmds = append(cmds, m.clearTags())
	case key.Matches(msg, m.keys.highlight):
		cmds = append(cmds, m.pressHighlight())
	case key.Matches(msg, m.keys.search):
		cmds = append(cmds, m.search.SetActive(true))
	case key.Matches(msg, m.keys.sort):
		q := m.window.Query()
		q.SortBy = source.NextSortField(q.SortBy)
		cmds = append(cmds, m.setQuery(q))
	case key.Matches(msg, m.keys.reverse):
		q := m.window.Query()
		q.Direction = q.Direction.Toggle()
		cmds = append(cmds, m.setQuery(q))
	case key.Matches(msg, m.keys.yank):
		cmds = append(cmds, m.yank())
	case key.Matches(msg, m.keys.reload):
		cmds = append(cmds, m.reload())
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = !m.showHelp
		m.SetSize(m.width, m.height)
		cmds = append(cmds, m.loadVisible())
	case key.Matches(msg, m.keys.cancel):
		m.drag.Leave()
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.search.Commit())
		m.search.SetActive(false)
		q := m.window.Query()
		q.Text = text
		return m.setQuery(q)
	case "esc":
		m.search.Revert()
		m.search.SetActive(false)
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *GridModel) navigate(direction, magnitude int, extend bool) tea.Cmd {
	return m.afterMove(m.selection.Navigate(direction, magnitude, extend))
}

// afterMove scrolls to a new cursor, or to the row a move is waiting on
// so that it gets loaded.
func (m *GridModel) afterMove(index int) tea.Cmd {
	if index != selection.NoRecord {
		m.view.Focus(index)
		return m.loadVisible()
	}
	if target, ok := m.selection.PendingTarget(); ok {
		m.view.ScrollToIndex(target)
		return m.loadVisible()
	}
	return nil
}

func (m *GridModel) setQuery(q models.Query) tea.Cmd {
	cursorKey := m.selection.CursorKey()
	changed, identityChanged, out := m.window.SetQuery(q)
	if !changed {
		return nil
	}
	if identityChanged {
		m.selection.Clear()
		m.view.Reset()
	}
	cmds := []tea.Cmd{m.applyReset(out)}
	switch {
	case identityChanged:
		cmds = append(cmds, m.loadVisible())
	case cursorKey != "":
		// follow the cursor to its position in the new order
		cmds = append(cmds, m.locate(cursorKey, false))
	}
	m.log.Debug().Str("sort", q.SortBy).Str("dir", string(q.Direction)).Str("text", q.Text).Msg("query changed")
	cmds = append(cmds, status(fmt.Sprintf("Sorted by %s %s", models.ColumnLabel(q.SortBy), GetSortIndicator(q.Direction == models.SortDesc))))
	return tea.Batch(cmds...)
}

// sortByColumn sorts by a clicked header; clicking the sorted column
// reverses it.
func (m *GridModel) sortByColumn(visibleIndex int) tea.Cmd {
	visible := layout.Visible(m.columns)
	if visibleIndex < 0 || visibleIndex >= len(visible) {
		return nil
	}
	field := visible[visibleIndex].Field
	if !slices.Contains(source.SortFields, field) {
		return nil
	}
	q := m.window.Query()
	if q.SortBy == field {
		q.Direction = q.Direction.Toggle()
	} else {
		q.SortBy = field
		q.Direction = models.SortAsc
	}
	return m.setQuery(q)
}

func (m *GridModel) locate(key string, selectIt bool) tea.Cmd {
	loc, ok := m.src.(source.Locator)
	if !ok {
		return nil
	}
	q := m.window.Query()
	return func() tea.Msg {
		index, err := loc.IndexOf(context.Background(), q, key)
		return locatedMsg{key: key, query: q, index: index, selectIt: selectIt, err: err}
	}
}

func (m *GridModel) handleLocated(msg locatedMsg) tea.Cmd {
	if msg.query != m.window.Query() {
		return nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, source.ErrNotFound) {
			if msg.selectIt {
				return status(fmt.Sprintf("Item %s not found", msg.key))
			}
			return nil
		}
		m.log.Warn().Err(msg.err).Str("key", msg.key).Msg("could not locate item")
		return status(fmt.Sprintf("✗ Could not locate %s: %v", msg.key, msg.err))
	}
	if msg.selectIt {
		m.selection.Set([]string{msg.key})
	}
	m.view.CenterOn(msg.index)
	m.view.Focus(msg.index)
	return tea.Batch(
		m.LoadMoreRows(max(msg.index-locateBefore, 0), msg.index+locateAfter),
		m.loadVisible(),
	)
}

func (m *GridModel) toggleTag(n int) tea.Cmd {
	change, ok := m.selection.ToggleColoredTagByIndex(n, m.tags)
	if !ok {
		return nil
	}
	return m.applyTagChange(change)
}

func (m *GridModel) clearTags() tea.Cmd {
	change, ok := m.selection.ClearColoredTags(m.tags)
	if !ok {
		return nil
	}
	return m.applyTagChange(change)
}

// applyTagChange shows the change immediately and persists it in the
// background. A failed write reloads the window.
func (m *GridModel) applyTagChange(change selection.TagChange) tea.Cmd {
	tagger, ok := m.src.(source.Tagger)
	if !ok {
		return status("✗ This library does not support tagging")
	}
	for _, k := range change.Keys {
		if i := m.window.IndexOf(k); i >= 0 {
			if rec, ok := m.window.Record(i); ok {
				m.window.UpdateRecord(change.Apply(rec))
			}
		}
	}
	return func() tea.Msg {
		err := tagger.UpdateTags(context.Background(), change.Keys, change.Add, change.Remove)
		return tagsSavedMsg{change: change, err: err}
	}
}

func (m *GridModel) handleTagsSaved(msg tagsSavedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Strs("keys", msg.change.Keys).Msg("failed to update tags")
		return tea.Batch(
			m.applyReset(m.window.Reset()),
			status(fmt.Sprintf("✗ Failed to update tags: %v", msg.err)),
		)
	}
	n := len(msg.change.Keys)
	switch {
	case len(msg.change.Add) > 0:
		return status(fmt.Sprintf("✓ Tagged %s with %q", pluralize(n, "item"), msg.change.Add[0]))
	case len(msg.change.Remove) == 1:
		return status(fmt.Sprintf("✓ Removed %q from %s", msg.change.Remove[0], pluralize(n, "item")))
	default:
		return status(fmt.Sprintf("✓ Cleared colored tags from %s", pluralize(n, "item")))
	}
}

func (m *GridModel) trashSelected() tea.Cmd {
	keys := m.selection.Keys()
	if len(keys) == 0 {
		return nil
	}
	trasher, ok := m.src.(source.Trasher)
	if !ok {
		return status("✗ This library does not support deleting items")
	}
	return func() tea.Msg {
		return trashedMsg{keys: keys, err: trasher.Trash(context.Background(), keys)}
	}
}

func (m *GridModel) handleTrashed(msg trashedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Strs("keys", msg.keys).Msg("failed to trash items")
		return status(fmt.Sprintf("✗ Failed to move items to trash: %v", msg.err))
	}
	m.selection.Clear()
	return tea.Batch(
		m.applyReset(m.window.Reset()),
		status(fmt.Sprintf("✓ Moved %s to trash", pluralize(len(msg.keys), "item"))),
	)
}

// newItem puts an untitled record at the cursor and saves it in the
// background. The injected row stands in for the record until the save
// settles; the reset that follows shows it at its sorted position.
func (m *GridModel) newItem() tea.Cmd {
	inserter, ok := m.src.(source.Inserter)
	if !ok {
		return status("✗ This library does not support adding items")
	}
	rec := models.Record{
		Key:          uuid.NewString(),
		Title:        "Untitled",
		ItemType:     "document",
		DateModified: time.Now().UTC().Truncate(time.Second),
	}
	index := max(m.selection.Cursor(), 0)
	m.window.Inject(index, rec)
	m.syncTotal()
	m.selection.Set([]string{rec.Key})
	m.view.Focus(index)
	return tea.Batch(
		m.loadVisible(),
		func() tea.Msg {
			return insertedMsg{record: rec, err: inserter.Insert(context.Background(), []models.Record{rec})}
		},
	)
}

func (m *GridModel) handleInserted(msg insertedMsg) tea.Cmd {
	if msg.err != nil {
		m.log.Error().Err(msg.err).Str("key", msg.record.Key).Msg("failed to add item")
		return tea.Batch(
			m.applyReset(m.window.Reset()),
			status(fmt.Sprintf("✗ Failed to add item: %v", msg.err)),
		)
	}
	return tea.Batch(
		m.applyReset(m.window.Reset()),
		m.locate(msg.record.Key, true),
		status("✓ Added 1 item"),
	)
}

func (m *GridModel) reload() tea.Cmd {
	return tea.Batch(m.applyReset(m.window.Reset()), m.loadVisible())
}

// applyReset follows up on a window reset: it loads the fresh window,
// checks the selection against the new result set and reports a
// restored connection.
func (m *GridModel) applyReset(out window.Outcome) tea.Cmd {
	m.syncTotal()
	cmds := []tea.Cmd{m.runFetches(out.Fetches), m.checkSelection()}
	if out.Signal == window.SignalRestored {
		cmds = append(cmds, status("✓ Connection restored"))
	}
	return tea.Batch(cmds...)
}

// checkSelection looks up every selected key in the current result set.
// Sources that cannot locate keys keep the selection as it is.
func (m *GridModel) checkSelection() tea.Cmd {
	keys := m.selection.Keys()
	if cursor := m.selection.CursorKey(); cursor != "" && !slices.Contains(keys, cursor) {
		keys = append(keys, cursor)
	}
	loc, ok := m.src.(source.Locator)
	if len(keys) == 0 || !ok {
		return nil
	}
	q := m.window.Query()
	return func() tea.Msg {
		var missing []string
		for _, k := range keys {
			if _, err := loc.IndexOf(context.Background(), q, k); errors.Is(err, source.ErrNotFound) {
				missing = append(missing, k)
			}
		}
		return selectionCheckedMsg{query: q, missing: missing}
	}
}

func (m *GridModel) handleSelectionChecked(msg selectionCheckedMsg) {
	if msg.query != m.window.Query() || len(msg.missing) == 0 {
		return
	}
	m.log.Debug().Strs("keys", msg.missing).Msg("pruning selection")
	m.selection.Prune(func(key string) bool {
		return !slices.Contains(msg.missing, key)
	})
}

func (m *GridModel) yank() tea.Cmd {
	keys := m.selection.Keys()
	if len(keys) == 0 {
		return status("Nothing selected")
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(strings.Join(keys, "\n")); err != nil {
			return StatusMsg(fmt.Sprintf("✗ Failed to copy: %v", err))
		}
		return StatusMsg(fmt.Sprintf("✓ Copied %s → clipboard", pluralize(len(keys), "key")))
	}
}

func (m *GridModel) pressHighlight() tea.Cmd {
	if m.highlight {
		return nil
	}
	m.highlight = true
	return highlight(true, m.selection.Keys())
}

func (m *GridModel) releaseHighlight() tea.Cmd {
	if !m.highlight {
		return nil
	}
	m.highlight = false
	return highlight(false, nil)
}

func (m *GridModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	cmds := []tea.Cmd{m.releaseHighlight()}
	if m.drag.Active() {
		return tea.Batch(append(cmds, m.handleDragMouse(msg))...)
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.view.Scroll(-wheelStep)
		cmds = append(cmds, m.loadVisible())
	case msg.Button == tea.MouseButtonWheelDown:
		m.view.Scroll(wheelStep)
		cmds = append(cmds, m.loadVisible())
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < headerLines {
			m.pressHeader(msg.X)
		} else if index, ok := m.view.RowAtLine(msg.Y - headerLines); ok {
			m.clickRow(index, msg)
		}
	}
	return tea.Batch(cmds...)
}

func (m *GridModel) pressHeader(x int) {
	// a release is still settling; swallow the press so it is not
	// taken for a click on the header
	if m.drag.Settling() {
		return
	}
	left, width := m.gridBounds()
	hit := drag.HitTest(layout.Visible(m.columns), left, width, x)
	m.drag.Press(m.columns, hit, x, left, width)
}

func (m *GridModel) handleDragMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionMotion:
		if !m.inGrid(msg.X, msg.Y) {
			m.drag.Leave()
			return nil
		}
		if !m.drag.Move(msg.X) {
			return tea.Tick(m.throttle, func(time.Time) tea.Msg {
				return dragFlushMsg{}
			})
		}
	case tea.MouseActionRelease:
		m.drag.Move(msg.X)
		commit := m.drag.Release()
		cmds := []tea.Cmd{func() tea.Msg { return settleMsg{} }}
		switch commit.Kind {
		case drag.CommitResize, drag.CommitReorder:
			cmds = append(cmds, m.commitColumns(commit.Columns))
		}
		if commit.Click {
			cmds = append(cmds, m.sortByColumn(commit.Column))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m *GridModel) clickRow(index int, msg tea.MouseMsg) {
	key, ok := m.window.KeyAt(index)
	if !ok {
		return
	}
	switch {
	case msg.Shift:
		m.selection.ExtendTo(index)
	case multiSelectHeld(msg):
		m.selection.Toggle(key, true)
	default:
		m.selection.Toggle(key, false)
	}
	m.view.Focus(index)
}

// commitColumns applies a new layout and persists it in the background
func (m *GridModel) commitColumns(columns []models.Column) tea.Cmd {
	m.columns = columns
	if m.store == nil {
		m.persisted = columns
		return nil
	}
	store := m.store
	return func() tea.Msg {
		return columnsSavedMsg{columns: columns, err: store.SaveColumns(columns)}
	}
}

func (m *GridModel) handleColumnsSaved(msg columnsSavedMsg) tea.Cmd {
	if msg.err == nil {
		m.persisted = msg.columns
		return nil
	}
	m.log.Error().Err(msg.err).Msg("failed to save column layout")
	m.columns = m.persisted
	if cols, err := m.store.LoadColumns(); err == nil && cols != nil {
		m.columns = normalizeColumns(layout.FromPreferences(cols))
	}
	return status("✗ Could not save column layout; changes were reverted")
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg(text) }
}

func persistentStatus(text string) tea.Cmd {
	return func() tea.Msg { return PersistentStatusMsg(text) }
}

func highlight(on bool, keys []string) tea.Cmd {
	return func() tea.Msg { return HighlightMsg{On: on, Keys: keys} }
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
