package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mazdak/lazyredis/internal/config"
	"github.com/mazdak/lazyredis/internal/redisx"
)

// colorProfileMu serializes tests that mutate the global lipgloss color
// profile.
var colorProfileMu sync.Mutex

// forceColorProfile pins lipgloss to ANSI output for tests that assert on
// styled output, restoring the original profile via t.Cleanup.
func forceColorProfile(t *testing.T) {
	t.Helper()
	colorProfileMu.Lock()
	orig := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(orig)
		colorProfileMu.Unlock()
	})
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// mockStore is a scripted in-memory redisx.Store. Keys are served from the
// keys slice in pages of pageSize; values come from the per-type maps.
type mockStore struct {
	keys     []string
	pageSize int

	types   map[string]string
	ttls    map[string]int64
	strs    map[string]string
	hashes  map[string][]redisx.Field
	lists   map[string][]string
	sets    map[string][]string
	zsets   map[string][]redisx.Member
	streams map[string][]redisx.StreamEntry
	jsons   map[string]string

	info       string
	connectErr error
	scanErr    error

	// wrongTypeOnce makes Type report "string" on the first call and the
	// mapped type afterwards, while GetString returns WRONGTYPE.
	wrongTypeOnce map[string]bool
	typeCalls     map[string]int

	db        int
	connected bool
	flushed   bool

	batches   [][]string
	doReplies map[string]string
	doCalls   []string

	// deleteMissing makes DeleteKey report the key as already gone.
	deleteMissing map[string]bool
}

func newMockStore(keys ...string) *mockStore {
	return &mockStore{
		keys:          keys,
		pageSize:      1000,
		types:         map[string]string{},
		ttls:          map[string]int64{},
		strs:          map[string]string{},
		hashes:        map[string][]redisx.Field{},
		lists:         map[string][]string{},
		sets:          map[string][]string{},
		zsets:         map[string][]redisx.Member{},
		streams:       map[string][]redisx.StreamEntry{},
		jsons:         map[string]string{},
		wrongTypeOnce: map[string]bool{},
		typeCalls:     map[string]int{},
		doReplies:     map[string]string{},
		deleteMissing: map[string]bool{},
	}
}

// withString scripts a string key.
func (s *mockStore) withString(key, value string) *mockStore {
	s.types[key] = redisx.TypeString
	s.strs[key] = value
	return s
}

func (s *mockStore) withHash(key string, fields ...redisx.Field) *mockStore {
	s.types[key] = redisx.TypeHash
	s.hashes[key] = fields
	return s
}

func (s *mockStore) Connect(ctx context.Context, url string, db int) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connected = true
	s.db = db
	return nil
}

func (s *mockStore) SelectDB(ctx context.Context, db int) error {
	s.db = db
	return nil
}

func (s *mockStore) DB() int { return s.db }

func (s *mockStore) ScanPage(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if s.scanErr != nil {
		return nil, 0, s.scanErr
	}
	matching := s.keys
	if match != "*" {
		prefix := strings.TrimSuffix(match, "*")
		matching = nil
		for _, k := range s.keys {
			if strings.HasPrefix(k, prefix) {
				matching = append(matching, k)
			}
		}
	}
	start := int(cursor)
	if start >= len(matching) {
		return nil, 0, nil
	}
	end := start + s.pageSize
	if end > len(matching) {
		end = len(matching)
	}
	next := uint64(end)
	if end == len(matching) {
		next = 0
	}
	return matching[start:end], next, nil
}

func (s *mockStore) Type(ctx context.Context, key string) (string, error) {
	s.typeCalls[key]++
	if s.wrongTypeOnce[key] && s.typeCalls[key] == 1 {
		return redisx.TypeString, nil
	}
	if t, ok := s.types[key]; ok {
		return t, nil
	}
	return redisx.TypeMissing, nil
}

func (s *mockStore) TTLSeconds(ctx context.Context, key string) (int64, error) {
	if ttl, ok := s.ttls[key]; ok {
		return ttl, nil
	}
	return -1, nil
}

func (s *mockStore) GetString(ctx context.Context, key string) (string, bool, error) {
	if s.wrongTypeOnce[key] {
		return "", false, fmt.Errorf("WRONGTYPE Operation against a key holding the wrong kind of value")
	}
	v, ok := s.strs[key]
	return v, ok, nil
}

func (s *mockStore) HashAll(ctx context.Context, key string) ([]redisx.Field, error) {
	return s.hashes[key], nil
}

func (s *mockStore) ListAll(ctx context.Context, key string) ([]string, error) {
	return s.lists[key], nil
}

func (s *mockStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.sets[key], nil
}

func (s *mockStore) SortedSetAll(ctx context.Context, key string) ([]redisx.Member, error) {
	return s.zsets[key], nil
}

func (s *mockStore) StreamRecent(ctx context.Context, key string, count int64) ([]redisx.StreamEntry, error) {
	return s.streams[key], nil
}

func (s *mockStore) JSONGet(ctx context.Context, key string) (string, error) {
	return s.jsons[key], nil
}

func (s *mockStore) DeleteKey(ctx context.Context, key string) (bool, error) {
	s.batches = append(s.batches, []string{key})
	if s.deleteMissing[key] {
		return false, nil
	}
	return true, nil
}

func (s *mockStore) DeleteBatch(ctx context.Context, keys []string) (int64, error) {
	s.batches = append(s.batches, append([]string(nil), keys...))
	return int64(len(keys)), nil
}

func (s *mockStore) Info(ctx context.Context) (string, error) {
	return s.info, nil
}

func (s *mockStore) FlushDB(ctx context.Context) error {
	s.flushed = true
	return nil
}

func (s *mockStore) Do(ctx context.Context, args ...any) (string, error) {
	line := ""
	for i, a := range args {
		if i > 0 {
			line += " "
		}
		line += fmt.Sprint(a)
	}
	s.doCalls = append(s.doCalls, line)
	if reply, ok := s.doReplies[line]; ok {
		return reply, nil
	}
	return "OK", nil
}

// testProfiles is the two-profile config most tests run with: a trusted
// local profile and an untrusted production one.
func testProfiles() *config.Config {
	dev := true
	notDev := false
	db2 := 2
	return &config.Config{
		Connections: []config.Profile{
			{Name: "Local", URL: "redis://127.0.0.1:6379", Dev: &dev, Color: "green"},
			{Name: "Prod", URL: "redis://prod.example.com:6379", DB: &db2, Dev: &notDev, Color: "red"},
		},
	}
}

// newTestModel builds a model over the store with the standard test config
// and a fixed terminal size. The clipboard is stubbed to a buffer.
func newTestModel(store *mockStore) (Model, *string) {
	m := New(store, Options{Config: testProfiles(), DB: -1, Version: "test"})
	m.width = 100
	m.height = 24
	copied := new(string)
	m.clipboardWrite = func(s string) error {
		*copied = s
		return nil
	}
	return m, copied
}

// connectAndScan drives the initial connect and the full enumeration chain
// to completion, returning the settled model.
func connectAndScan(t *testing.T, m Model) Model {
	t.Helper()
	model, cmd := m.Update(m.connect()())
	m = model.(Model)
	for cmd != nil {
		model, cmd = m.Update(cmd())
		m = model.(Model)
	}
	if m.pending != opNone {
		t.Fatalf("pending = %v after scan chain, want opNone", m.pending)
	}
	return m
}

// keyMsg converts a readable key name into a bubbletea key event.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press sends one key and returns the updated model and any command.
func press(m Model, s string) (Model, tea.Cmd) {
	model, cmd := m.Update(keyMsg(s))
	return model.(Model), cmd
}

// pressAndRun sends one key and, if it produced a command, feeds the
// resulting message back through Update.
func pressAndRun(m Model, s string) Model {
	m, cmd := press(m, s)
	for cmd != nil {
		model, next := m.Update(cmd())
		m = model.(Model)
		cmd = next
	}
	return m
}

// entryNames extracts the display names of the current visible entries.
func entryNames(m Model) []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name
	}
	return names
}
