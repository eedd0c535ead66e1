// Package tui provides the interactive terminal browser: a navigable key
// tree on the left, the activated key's value on the right, and modal
// flows for search, profile/database switching, raw commands, server
// stats, and staged deletion.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mazdak/lazyredis/internal/config"
	"github.com/mazdak/lazyredis/internal/deletion"
	"github.com/mazdak/lazyredis/internal/keytree"
	"github.com/mazdak/lazyredis/internal/redisx"
	"github.com/mazdak/lazyredis/internal/search"
	"github.com/mazdak/lazyredis/internal/viewer"
)

// scanCount is the page size for keyspace enumeration.
const scanCount = 1000

// streamEntryCount caps how many recent stream entries are fetched.
const streamEntryCount = 100

// statsMaxAge is how stale the server stats may get while the overlay is
// open before the idle tick refreshes them.
const statsMaxAge = 5 * time.Second

// tickInterval drives flash expiry and the stats staleness check.
const tickInterval = time.Second

// flashDuration is how long flash messages are displayed.
const flashDuration = 4 * time.Second

// clipboardPreviewLen is how much of a copied value the flash echoes back.
const clipboardPreviewLen = 50

// focusArea is which panel receives navigation keys.
type focusArea int

const (
	focusTree focusArea = iota
	focusValue
)

// opTag identifies the single operation allowed in flight. Only opNone
// permits starting another; results arriving for a superseded session are
// dropped.
type opTag int

const (
	opNone opTag = iota
	opConnect
	opScan
	opLoadValue
	opDelete
	opCommand
	opStats
)

// modalType represents the type of modal dialog.
type modalType int

const (
	modalNone modalType = iota
	modalDeleteConfirm
	modalProfileSelector
	modalDBSelector
	modalHelp
)

// Options configures the TUI.
type Options struct {
	Config  *config.Config
	Profile string // profile name override; empty picks the first
	DB      int    // logical database override; negative keeps the profile's
	Version string
}

// Model is the main TUI model following the Elm architecture.
type Model struct {
	store   redisx.Store
	cfg     *config.Config
	profile config.Profile
	db      int
	version string

	// Keyspace enumeration.
	tree         *keytree.Tree
	rawKeys      []string
	breadcrumb   []string
	entries      []keytree.Entry
	cursor       int
	scrollOffset int

	// Value panel.
	viewer viewer.Viewer
	focus  focusArea

	// Search mode.
	search      *search.State
	searchInput textinput.Model

	// Raw command mode.
	commandActive bool
	commandInput  textinput.Model
	commandOutput string

	// Server stats overlay.
	stats        *redisx.Stats
	statsVisible bool

	// Operation scheduler: one op in flight, results carry the session
	// they were issued under.
	pending opTag
	session uint64

	// Frozen view: holds the last rendered frame during connect/switch
	// transitions so chained operations do not flash intermediate states.
	frozenView string

	// Deletion staging.
	modal       modalType
	modalCursor int
	staged      []deletion.Target
	selected    map[string]bool // entry names marked at the current level

	flashMessage   string
	flashExpiresAt time.Time

	width  int
	height int

	err      error
	quitting bool

	// Injected for tests; defaults to the system clipboard.
	clipboardWrite func(string) error
}

// New creates a TUI model over a store session. The model starts
// disconnected with the initial connect pending; Init issues it.
func New(store redisx.Store, opts Options) Model {
	profile := config.DefaultProfile()
	if opts.Config != nil && len(opts.Config.Connections) > 0 {
		profile = opts.Config.Connections[0]
		if opts.Profile != "" {
			if p, ok := opts.Config.ProfileNamed(opts.Profile); ok {
				profile = p
			}
		}
	}
	db := profile.Database()
	if opts.DB >= 0 {
		db = opts.DB
	}

	si := textinput.New()
	si.Placeholder = "fuzzy search"
	si.CharLimit = 200
	si.Width = 40

	ci := textinput.New()
	ci.Placeholder = "command (e.g. GET user:1)"
	ci.CharLimit = 500
	ci.Width = 60

	return Model{
		store:          store,
		cfg:            opts.Config,
		profile:        profile,
		db:             db,
		version:        opts.Version,
		tree:           keytree.New(':'),
		search:         search.NewState(),
		searchInput:    si,
		commandInput:   ci,
		pending:        opConnect,
		selected:       make(map[string]bool),
		clipboardWrite: clipboard.WriteAll,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), tick())
}

// connectedMsg is sent when the initial or profile-switch connect finishes.
type connectedMsg struct {
	session uint64
	err     error
}

// scanPageMsg delivers one enumeration page.
type scanPageMsg struct {
	session uint64
	keys    []string
	next    uint64
	err     error
}

// valueLoadedMsg delivers the activated key's type, TTL, and payload.
type valueLoadedMsg struct {
	session  uint64
	key      string
	typeName string
	ttl      int64
	value    viewer.Value
	err      error
}

// statsLoadedMsg delivers parsed server stats.
type statsLoadedMsg struct {
	session uint64
	stats   *redisx.Stats
	err     error
}

// dbSelectedMsg is sent when a SELECT completes.
type dbSelectedMsg struct {
	session uint64
	db      int
	err     error
}

// deleteDoneMsg delivers the outcome of an executed deletion run. missing
// names the exact key of a single-key delete that was already gone.
type deleteDoneMsg struct {
	session uint64
	result  deletion.Result
	missing string
}

// commandDoneMsg delivers a raw command's reply.
type commandDoneMsg struct {
	session uint64
	input   string
	output  string
	err     error
}

// tickMsg drives flash expiry and stats refresh.
type tickMsg struct {
	t time.Time
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg{t: t}
	})
}

// connect dials the current profile and selects the current database.
func (m Model) connect() tea.Cmd {
	session := m.session
	url := m.profile.URL
	db := m.db
	return func() tea.Msg {
		err := m.store.Connect(context.Background(), url, db)
		return connectedMsg{session: session, err: err}
	}
}

// scanPage fetches one enumeration page; the caller chains the next page
// until the store's cursor returns to zero.
func (m Model) scanPage(cursor uint64) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		keys, next, err := m.store.ScanPage(context.Background(), cursor, "*", scanCount)
		return scanPageMsg{session: session, keys: keys, next: next, err: err}
	}
}

// selectDB switches the logical database.
func (m Model) selectDB(db int) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		err := m.store.SelectDB(context.Background(), db)
		return dbSelectedMsg{session: session, db: db, err: err}
	}
}

// loadValue fetches the activated key: type, TTL, and the type-dispatched
// payload. A WRONGTYPE from the read means the key changed type between
// dispatch and read; the type is re-queried once and the read retried.
func (m Model) loadValue(key string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ctx := context.Background()
		typeName, err := m.store.Type(ctx, key)
		if err != nil {
			return valueLoadedMsg{session: session, key: key, err: err}
		}

		value, err := fetchValue(ctx, m.store, key, typeName)
		if redisx.IsWrongType(err) {
			typeName, err = m.store.Type(ctx, key)
			if err != nil {
				return valueLoadedMsg{session: session, key: key, err: err}
			}
			value, err = fetchValue(ctx, m.store, key, typeName)
		}
		if err != nil {
			return valueLoadedMsg{session: session, key: key, err: err}
		}

		ttl, err := m.store.TTLSeconds(ctx, key)
		if err != nil {
			ttl = -2
		}
		return valueLoadedMsg{
			session:  session,
			key:      key,
			typeName: typeName,
			ttl:      ttl,
			value:    value,
		}
	}
}

// fetchValue dispatches on the declared type and fetches the payload.
func fetchValue(ctx context.Context, store redisx.Store, key, typeName string) (viewer.Value, error) {
	switch typeName {
	case redisx.TypeString:
		raw, ok, err := store.GetString(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return viewer.Fault{Message: "Key no longer exists."}, nil
		}
		return viewer.String{Raw: []byte(raw)}, nil
	case redisx.TypeHash:
		fields, err := store.HashAll(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewer.Hash{Fields: fields}, nil
	case redisx.TypeList:
		elements, err := store.ListAll(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewer.List{Elements: elements}, nil
	case redisx.TypeSet:
		members, err := store.SetMembers(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewer.Set{Members: members}, nil
	case redisx.TypeZSet:
		members, err := store.SortedSetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewer.ZSet{Members: members}, nil
	case redisx.TypeStream:
		entries, err := store.StreamRecent(ctx, key, streamEntryCount)
		if err != nil {
			return nil, err
		}
		return viewer.Stream{Entries: entries}, nil
	case redisx.TypeJSON:
		raw, err := store.JSONGet(ctx, key)
		if err != nil {
			return nil, err
		}
		return viewer.JSON{Raw: raw}, nil
	case redisx.TypeMissing:
		return viewer.Fault{Message: "Key no longer exists."}, nil
	default:
		return viewer.Unsupported{TypeName: typeName}, nil
	}
}

// loadStats fetches and parses INFO.
func (m Model) loadStats() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		info, err := m.store.Info(context.Background())
		if err != nil {
			return statsLoadedMsg{session: session, err: err}
		}
		return statsLoadedMsg{session: session, stats: redisx.ParseStats(info)}
	}
}

// runDelete executes the staged targets. A lone exact key goes through the
// single-key primitive so an already-gone key is reported as such rather
// than counted as zero removals.
func (m Model) runDelete(targets []deletion.Target) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		ctx := context.Background()
		if len(targets) == 1 && targets[0].Prefix == "" {
			key := targets[0].Key
			existed, err := deletion.NewExecutor(m.store).DeleteOne(ctx, key)
			var res deletion.Result
			switch {
			case err != nil:
				res.Errs = append(res.Errs, fmt.Sprintf("delete %q: %v", key, err))
			case existed:
				res.Deleted = 1
			default:
				return deleteDoneMsg{session: session, missing: key}
			}
			return deleteDoneMsg{session: session, result: res}
		}
		res := deletion.NewExecutor(m.store).Run(ctx, targets)
		return deleteDoneMsg{session: session, result: res}
	}
}

// runCommand executes a raw command. FLUSHDB/FLUSHALL are refused unless
// the profile is marked dev; the gate fails closed.
func (m Model) runCommand(input string) tea.Cmd {
	session := m.session
	trusted := m.profile.Trusted()
	profileName := m.profile.Name
	return func() tea.Msg {
		fields := strings.Fields(input)
		if len(fields) == 0 {
			return commandDoneMsg{session: session, input: input, output: ""}
		}
		verb := strings.ToUpper(fields[0])
		if (verb == "FLUSHDB" || verb == "FLUSHALL") && !trusted {
			return commandDoneMsg{
				session: session,
				input:   input,
				err:     fmt.Errorf("%s refused: profile %q is not marked dev", verb, profileName),
			}
		}
		args := make([]any, len(fields))
		for i, f := range fields {
			args[i] = f
		}
		out, err := m.store.Do(context.Background(), args...)
		return commandDoneMsg{session: session, input: input, output: out, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case connectedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			m.pending = opNone
			m.frozenView = ""
			m.err = msg.err
			m.setFlash(fmt.Sprintf("Connect failed: %v", msg.err))
			return m, nil
		}
		m.err = nil
		return m.startScan()

	case scanPageMsg:
		if msg.session != m.session {
			return m, nil
		}
		// First page unfreezes the view so enumeration progress shows.
		m.frozenView = ""
		if msg.err != nil {
			m.pending = opNone
			m.setFlash(fmt.Sprintf("Scan failed: %v", msg.err))
			return m, nil
		}
		m.rawKeys = append(m.rawKeys, msg.keys...)
		m.tree.InsertAll(msg.keys)
		m.refreshVisible()
		if m.search.Active {
			m.search.Refilter(m.rawKeys)
		}
		if msg.next != 0 {
			return m, m.scanPage(msg.next)
		}
		m.pending = opNone
		return m, nil

	case valueLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.pending = opNone
		if msg.err != nil {
			m.viewer.SetValue(msg.key, "", -2, viewer.Fault{
				Message: fmt.Sprintf("Failed to load value: %v", msg.err),
			})
			return m, nil
		}
		m.viewer.SetValue(msg.key, msg.typeName, msg.ttl, msg.value)
		return m, nil

	case dbSelectedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.err != nil {
			m.pending = opNone
			m.frozenView = ""
			m.setFlash(fmt.Sprintf("SELECT %d failed: %v", msg.db, msg.err))
			return m, nil
		}
		m.db = msg.db
		return m.startScan()

	case deleteDoneMsg:
		if msg.session != m.session {
			return m, nil
		}
		if msg.missing != "" {
			m.setFlash(fmt.Sprintf("Key %q did not exist", msg.missing))
		} else {
			m.setFlash(msg.result.Summary())
		}
		m.staged = nil
		m.selected = make(map[string]bool)
		m.viewer.Reset()
		return m.startScan()

	case commandDoneMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.pending = opNone
		if msg.err != nil {
			m.commandOutput = fmt.Sprintf("(error) %v", msg.err)
		} else {
			m.commandOutput = msg.output
		}
		return m, nil

	case statsLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		if m.pending == opStats {
			m.pending = opNone
		}
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("INFO failed: %v", msg.err))
			return m, nil
		}
		m.stats = msg.stats
		return m, nil

	case tickMsg:
		if m.flashMessage != "" && msg.t.After(m.flashExpiresAt) {
			m.flashMessage = ""
		}
		if m.statsVisible && m.pending == opNone &&
			(m.stats == nil || m.stats.Stale(statsMaxAge)) {
			m.pending = opStats
			return m, tea.Batch(m.loadStats(), tick())
		}
		return m, tick()
	}

	return m, nil
}

// startScan freezes the current frame, resets enumeration state under a
// fresh session, and issues the first page. Results tagged with older
// sessions are dropped on arrival.
func (m Model) startScan() (tea.Model, tea.Cmd) {
	m.frozenView = m.render()
	m.session++
	m.pending = opScan
	m.rawKeys = nil
	m.tree.Reset()
	m.breadcrumb = nil
	m.cursor = 0
	m.scrollOffset = 0
	m.entries = nil
	m.selected = make(map[string]bool)
	return m, m.scanPage(0)
}

// refreshVisible recomputes the entry list for the current breadcrumb. A
// breadcrumb that no longer resolves (keys deleted under us) fails closed
// back to the root rather than showing a guessed view.
func (m *Model) refreshVisible() {
	entries, ok := m.tree.ChildrenAt(m.breadcrumb)
	if !ok {
		m.breadcrumb = nil
		entries, _ = m.tree.ChildrenAt(nil)
	}
	m.entries = entries
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// currentEntry returns the entry under the tree cursor.
func (m Model) currentEntry() (keytree.Entry, bool) {
	if m.cursor < len(m.entries) {
		return m.entries[m.cursor], true
	}
	return keytree.Entry{}, false
}

// setFlash shows a temporary status message.
func (m *Model) setFlash(msg string) {
	m.flashMessage = msg
	m.flashExpiresAt = time.Now().Add(flashDuration)
}

// stageCurrent builds the deletion target for the entry under the cursor.
func (m Model) stageCurrent() ([]deletion.Target, bool) {
	entry, ok := m.currentEntry()
	if !ok {
		return nil, false
	}
	return []deletion.Target{m.targetFor(entry)}, true
}

// stageSelected builds targets for every marked entry at the current level.
func (m Model) stageSelected() []deletion.Target {
	var targets []deletion.Target
	for _, e := range m.entries {
		if m.selected[e.Name] {
			targets = append(targets, m.targetFor(e))
		}
	}
	return targets
}

func (m Model) targetFor(e keytree.Entry) deletion.Target {
	if e.IsFolder {
		return deletion.Prefix(m.tree.Prefix(m.breadcrumb, e.Name))
	}
	return deletion.Key(e.FullKey)
}

// activateSearchResult jumps to a picked search result: a leaf loads its
// value, a folder (including one the tree absorbed) becomes the new level.
func (m Model) activateSearchResult(key string) (tea.Model, tea.Cmd) {
	act := search.Resolve(key, m.tree, m.rawKeys)
	m.search.Clear()
	m.searchInput.Reset()
	m.searchInput.Blur()

	if act.IsFolder {
		m.breadcrumb = act.Segments
		m.cursor = 0
		m.scrollOffset = 0
		m.refreshVisible()
		return m, nil
	}

	m.breadcrumb = act.Segments[:len(act.Segments)-1]
	m.refreshVisible()
	for i, e := range m.entries {
		if !e.IsFolder && e.FullKey == act.FullPath {
			m.cursor = i
			break
		}
	}
	m.pending = opLoadValue
	return m, m.loadValue(act.FullPath)
}

// copyToClipboard writes text and flashes a preview of what was copied.
func (m *Model) copyToClipboard(label, text string) {
	if err := m.clipboardWrite(text); err != nil {
		m.setFlash(fmt.Sprintf("Copy failed: %v", err))
		return
	}
	m.setFlash(fmt.Sprintf("Copied %s: %s", label, ellipsize(text, clipboardPreviewLen)))
}
