package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mazdak/lazyredis/internal/config"
)

// dbSelectorSize is how many logical databases the selector offers. Default
// server configurations expose 16.
const dbSelectorSize = 16

// handleKeyPress routes a key event: modals first, then the text-input
// modes, then panel navigation.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.handleModalKeys(msg)
	}
	if m.search.Active {
		return m.handleSearchKeys(msg)
	}
	if m.commandActive {
		return m.handleCommandKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalDeleteConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			if m.pending != opNone {
				return m, nil
			}
			m.modal = modalNone
			targets := m.staged
			m.pending = opDelete
			return m, m.runDelete(targets)
		case "n", "N", "esc", "q":
			m.modal = modalNone
			m.staged = nil
			return m, nil
		}
		return m, nil

	case modalProfileSelector:
		switch msg.String() {
		case "up", "k":
			if m.modalCursor > 0 {
				m.modalCursor--
			}
		case "down", "j":
			if m.cfg != nil && m.modalCursor < len(m.cfg.Connections)-1 {
				m.modalCursor++
			}
		case "enter":
			// One operation in flight at a time; a confirm that would start
			// another is ignored until the current one settles.
			if m.pending != opNone {
				return m, nil
			}
			m.modal = modalNone
			if m.cfg == nil || m.modalCursor >= len(m.cfg.Connections) {
				return m, nil
			}
			return m.switchProfile(m.cfg.Connections[m.modalCursor])
		case "esc", "q", "p":
			m.modal = modalNone
		}
		return m, nil

	case modalDBSelector:
		switch msg.String() {
		case "up", "k":
			if m.modalCursor > 0 {
				m.modalCursor--
			}
		case "down", "j":
			if m.modalCursor < dbSelectorSize-1 {
				m.modalCursor++
			}
		case "enter":
			if m.pending != opNone {
				return m, nil
			}
			m.modal = modalNone
			if m.modalCursor == m.db {
				return m, nil
			}
			m.frozenView = m.render()
			m.session++
			m.pending = opConnect
			return m, m.selectDB(m.modalCursor)
		case "esc", "q", "b":
			m.modal = modalNone
		}
		return m, nil

	case modalHelp:
		m.modal = modalNone
		return m, nil
	}
	return m, nil
}

// switchProfile reconnects against a different profile, dropping all state
// from the previous session.
func (m Model) switchProfile(p config.Profile) (tea.Model, tea.Cmd) {
	m.frozenView = m.render()
	m.profile = p
	m.db = p.Database()
	m.session++
	m.pending = opConnect
	m.viewer.Reset()
	m.commandOutput = ""
	m.stats = nil
	m.statsVisible = false
	return m, m.connect()
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Clear()
		m.searchInput.Reset()
		m.searchInput.Blur()
		return m, nil
	case "enter":
		if key, ok := m.search.SelectedKey(); ok {
			return m.activateSearchResult(key)
		}
		return m, nil
	case "up", "ctrl+p":
		m.search.MoveSelection(-1)
		return m, nil
	case "down", "ctrl+n":
		m.search.MoveSelection(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.search.SetQuery(m.searchInput.Value(), m.rawKeys)
	return m, cmd
}

func (m Model) handleCommandKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commandActive = false
		m.commandInput.Reset()
		m.commandInput.Blur()
		return m, nil
	case "enter":
		input := strings.TrimSpace(m.commandInput.Value())
		m.commandInput.Reset()
		if input == "" || m.pending != opNone {
			return m, nil
		}
		m.pending = opCommand
		return m, m.runCommand(input)
	}

	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.modal = modalHelp
		return m, nil

	case "/":
		m.search.Active = true
		m.search.SetQuery("", m.rawKeys)
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case ":", "c":
		m.commandActive = true
		return m, m.commandInput.Focus()

	case "p":
		if m.cfg == nil || len(m.cfg.Connections) == 0 {
			return m, nil
		}
		m.modal = modalProfileSelector
		m.modalCursor = 0
		for i, p := range m.cfg.Connections {
			if p.Name == m.profile.Name {
				m.modalCursor = i
				break
			}
		}
		return m, nil

	case "b":
		m.modal = modalDBSelector
		m.modalCursor = m.db
		return m, nil

	case "s":
		m.statsVisible = !m.statsVisible
		if m.statsVisible && m.pending == opNone &&
			(m.stats == nil || m.stats.Stale(statsMaxAge)) {
			m.pending = opStats
			return m, m.loadStats()
		}
		return m, nil

	case "r":
		if m.pending != opNone {
			return m, nil
		}
		return m.startScan()

	case "tab", "shift+tab":
		if m.focus == focusTree && m.viewer.Active() {
			m.focus = focusValue
		} else {
			m.focus = focusTree
		}
		return m, nil

	case "esc":
		if m.statsVisible {
			m.statsVisible = false
			return m, nil
		}
		if m.focus == focusValue {
			m.focus = focusTree
			return m, nil
		}
		if len(m.breadcrumb) > 0 {
			m.breadcrumb = nil
			m.cursor = 0
			m.scrollOffset = 0
			m.selected = make(map[string]bool)
			m.refreshVisible()
		}
		return m, nil

	case "backspace", "h", "left":
		if m.focus == focusTree && len(m.breadcrumb) > 0 {
			m.breadcrumb = m.breadcrumb[:len(m.breadcrumb)-1]
			m.cursor = 0
			m.scrollOffset = 0
			m.selected = make(map[string]bool)
			m.refreshVisible()
		}
		return m, nil

	case "up", "k":
		return m.moveCursor(-1), nil
	case "down", "j":
		return m.moveCursor(1), nil
	case "pgup":
		return m.moveCursor(-m.pageSize()), nil
	case "pgdown":
		return m.moveCursor(m.pageSize()), nil
	case "g", "home":
		return m.moveCursor(-1 << 30), nil
	case "G", "end":
		return m.moveCursor(1 << 30), nil

	case "enter", "l", "right":
		if m.focus != focusTree {
			return m, nil
		}
		return m.activateCurrent()

	case " ":
		if m.focus != focusTree {
			return m, nil
		}
		if entry, ok := m.currentEntry(); ok {
			if m.selected[entry.Name] {
				delete(m.selected, entry.Name)
			} else {
				m.selected[entry.Name] = true
			}
			return m.moveCursor(1), nil
		}
		return m, nil

	case "d":
		if m.focus != focusTree || m.pending != opNone {
			return m, nil
		}
		if targets, ok := m.stageCurrent(); ok {
			m.staged = targets
			m.modal = modalDeleteConfirm
		}
		return m, nil

	case "D":
		if m.focus != focusTree || m.pending != opNone {
			return m, nil
		}
		if targets := m.stageSelected(); len(targets) > 0 {
			m.staged = targets
			m.modal = modalDeleteConfirm
		}
		return m, nil

	case "y":
		if entry, ok := m.currentEntry(); ok {
			name := m.tree.Path(m.breadcrumb, strings.TrimSuffix(entry.Name, "/"))
			m.copyToClipboard("key", name)
		}
		return m, nil

	case "Y":
		if !m.viewer.Active() {
			return m, nil
		}
		if m.focus == focusValue && m.viewer.HasLines() {
			if line, ok := m.viewer.SelectedLine(); ok {
				m.copyToClipboard("line", line)
			}
			return m, nil
		}
		m.copyToClipboard("value", m.viewer.Text())
		return m, nil
	}

	return m, nil
}

// moveCursor moves the cursor in whichever panel has focus, clamped.
func (m Model) moveCursor(delta int) Model {
	if m.focus == focusValue {
		m.viewer.MoveCursor(delta)
		return m
	}
	if len(m.entries) == 0 {
		m.cursor = 0
		return m
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	m.clampScroll()
	return m
}

// activateCurrent descends into a folder or fetches a leaf's value.
func (m Model) activateCurrent() (tea.Model, tea.Cmd) {
	entry, ok := m.currentEntry()
	if !ok {
		return m, nil
	}
	if entry.IsFolder {
		m.breadcrumb = append(append([]string(nil), m.breadcrumb...), strings.TrimSuffix(entry.Name, "/"))
		m.cursor = 0
		m.scrollOffset = 0
		m.selected = make(map[string]bool)
		m.refreshVisible()
		return m, nil
	}
	if m.pending != opNone {
		return m, nil
	}
	m.pending = opLoadValue
	return m, m.loadValue(entry.FullKey)
}

// pageSize is how many rows one PageUp/PageDown jump covers.
func (m Model) pageSize() int {
	n := m.height - 8
	if n < 1 {
		n = 10
	}
	return n
}

// clampScroll keeps the cursor inside the visible window.
func (m *Model) clampScroll() {
	visible := m.pageSize()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}
