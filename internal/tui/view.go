package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mazdak/lazyredis/internal/redisx"
)

// Monochrome base theme; the profile's accent color marks the active
// connection so prod and dev sessions are visually distinct.
var (
	bgBase   = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}
	bgCursor = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#282828"}

	fgDim = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#999999"}

	cursorRowStyle = lipgloss.NewStyle().Background(bgCursor)

	selectedRowStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(fgDim)

	folderStyle = lipgloss.NewStyle().Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("6"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			Background(bgBase)

	modalTitleStyle = lipgloss.NewStyle().Bold(true)

	flashStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#996600", Dark: "#ffcc00"})

	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

// deleteConfirmMaxListed caps how many staged targets the confirm dialog
// enumerates before collapsing the rest into a count.
const deleteConfirmMaxListed = 8

// View implements tea.Model. During connect and database-switch chains the
// previously rendered frame is replayed so intermediate states never flash.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.frozenView != "" {
		return m.frozenView
	}
	return m.render()
}

func (m Model) render() string {
	if m.width == 0 {
		return "starting..."
	}

	if m.modal != modalNone {
		return m.renderModal()
	}
	if m.statsVisible {
		return m.renderStatsOverlay()
	}

	title := m.renderTitleBar()
	body := m.renderPanels()
	bars := m.renderBars()
	footer := m.renderFooter()

	sections := []string{title, body}
	if bars != "" {
		sections = append(sections, bars)
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (m Model) renderTitleBar() string {
	accent := m.profile.AccentColor()
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}).
		Background(accent).
		Padding(0, 1)

	name := "lazyredis"
	if m.version != "" && m.version != "dev" {
		name = fmt.Sprintf("lazyredis [%s]", m.version)
	}
	left := titleStyle.Render(fmt.Sprintf("%s — %s", name, m.profile.Name))

	right := dimStyle.Render(fmt.Sprintf("%s db:%d keys:%s", m.profile.URL, m.db, formatKeyCount(len(m.rawKeys))))
	if m.pending != opNone {
		right += " " + dimStyle.Render("working...")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderPanels() string {
	treeWidth := m.width * 2 / 5
	if treeWidth < 24 {
		treeWidth = 24
	}
	valueWidth := m.width - treeWidth - 6
	if valueWidth < 20 {
		valueWidth = 20
	}
	bodyHeight := m.panelHeight()

	left := m.renderTreePanel(treeWidth, bodyHeight)
	right := m.renderValuePanel(valueWidth, bodyHeight)

	leftStyle, rightStyle := panelStyle, panelStyle
	if m.focus == focusTree {
		leftStyle = focusedPanelStyle
	} else {
		rightStyle = focusedPanelStyle
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Width(treeWidth).Height(bodyHeight).Render(left),
		rightStyle.Width(valueWidth).Height(bodyHeight).Render(right),
	)
}

// panelHeight is the row budget for the panel interiors.
func (m Model) panelHeight() int {
	h := m.height - 5
	if m.search.Active || m.commandActive || m.commandOutput != "" {
		h -= 2
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderTreePanel(width, height int) string {
	var b strings.Builder

	crumb := "/"
	if len(m.breadcrumb) > 0 {
		crumb = strings.Join(m.breadcrumb, m.tree.Delimiter())
	}
	b.WriteString(folderStyle.Render(truncateRunes(crumb, width)))
	b.WriteString("\n")

	if m.search.Active {
		m.renderSearchResults(&b, width, height-1)
		return b.String()
	}

	if len(m.entries) == 0 {
		if m.pending == opScan || m.pending == opConnect {
			b.WriteString(dimStyle.Render("scanning..."))
		} else {
			b.WriteString(dimStyle.Render("(no keys)"))
		}
		return b.String()
	}

	rows := height - 1
	end := m.scrollOffset + rows
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := m.scrollOffset; i < end; i++ {
		e := m.entries[i]
		marker := "  "
		if m.selected[e.Name] {
			marker = "* "
		}
		line := truncateRunes(marker+e.Name, width)
		switch {
		case i == m.cursor && m.focus == focusTree:
			line = cursorRowStyle.Render(padRight(line, width))
		case m.selected[e.Name]:
			line = selectedRowStyle.Render(line)
		case e.IsFolder:
			line = folderStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderSearchResults(b *strings.Builder, width, height int) {
	if len(m.search.Filtered) == 0 {
		b.WriteString(dimStyle.Render("(no matches)"))
		return
	}
	// Keep the selection visible within the window.
	offset := 0
	if m.search.Selected >= height {
		offset = m.search.Selected - height + 1
	}
	end := offset + height
	if end > len(m.search.Filtered) {
		end = len(m.search.Filtered)
	}
	for i := offset; i < end; i++ {
		line := truncateRunes("  "+m.search.Filtered[i], width)
		if i == m.search.Selected {
			line = cursorRowStyle.Render(padRight(line, width))
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
}

func (m Model) renderValuePanel(width, height int) string {
	var b strings.Builder

	if !m.viewer.Active() {
		b.WriteString(dimStyle.Render("Select a key to view its value"))
		return b.String()
	}

	header := fmt.Sprintf("%s  [%s]  TTL: %s",
		truncateRunes(m.viewer.Key, width-24), m.viewer.TypeName, formatTTL(m.viewer.TTL))
	b.WriteString(folderStyle.Render(truncateRunes(header, width)))
	b.WriteString("\n")

	rows := height - 1
	if m.viewer.HasLines() {
		offset := 0
		if m.focus == focusValue && m.viewer.Cursor >= rows {
			offset = m.viewer.Cursor - rows + 1
		}
		end := offset + rows
		if end > len(m.viewer.Lines) {
			end = len(m.viewer.Lines)
		}
		for i := offset; i < end; i++ {
			line := truncateRunes(m.viewer.Lines[i], width)
			if i == m.viewer.Cursor && m.focus == focusValue {
				line = cursorRowStyle.Render(padRight(line, width))
			}
			b.WriteString(line)
			if i < end-1 {
				b.WriteString("\n")
			}
		}
		return b.String()
	}

	lines := strings.Split(m.viewer.Block, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for i, line := range lines {
		b.WriteString(truncateRunes(line, width))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderBars renders the search or command input line plus command output.
func (m Model) renderBars() string {
	var parts []string
	if m.search.Active {
		count := fmt.Sprintf("%d/%d", len(m.search.Filtered), len(m.rawKeys))
		parts = append(parts, "/"+m.searchInput.View()+"  "+dimStyle.Render(count))
	}
	if m.commandActive {
		parts = append(parts, ":"+m.commandInput.View())
	}
	if m.commandOutput != "" {
		out := m.commandOutput
		if lines := strings.Split(out, "\n"); len(lines) > 5 {
			out = strings.Join(lines[:5], "\n") + "\n" + dimStyle.Render("...")
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderFooter() string {
	if m.flashMessage != "" {
		return flashStyle.Render(truncateRunes(m.flashMessage, m.width))
	}
	if m.err != nil {
		return errorStyle.Render(truncateRunes(fmt.Sprintf("error: %v", m.err), m.width))
	}

	hints := "j/k move • enter open • bksp up • / search • tab focus • d/D delete • y/Y copy • : cmd • p profiles • b db • s stats • r rescan • q quit"
	return dimStyle.Render(truncateRunes(hints, m.width))
}

func (m Model) renderModal() string {
	var content string
	switch m.modal {
	case modalDeleteConfirm:
		content = m.renderDeleteConfirm()
	case modalProfileSelector:
		content = m.renderProfileSelector()
	case modalDBSelector:
		content = m.renderDBSelector()
	case modalHelp:
		content = m.renderHelp()
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Render(content))
}

func (m Model) renderDeleteConfirm() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Delete?"))
	b.WriteString("\n\n")
	for i, t := range m.staged {
		if i == deleteConfirmMaxListed {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ...and %d more", len(m.staged)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString("  " + ellipsize(t.String(), 60) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Prefixes remove every key underneath. y confirm • n cancel"))
	return b.String()
}

func (m Model) renderProfileSelector() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Connections"))
	b.WriteString("\n\n")
	for i, p := range m.cfg.Connections {
		cursor := "  "
		if i == m.modalCursor {
			cursor = "> "
		}
		marker := " "
		if p.Trusted() {
			marker = dimStyle.Render(" (dev)")
		}
		line := fmt.Sprintf("%s%s — %s db:%d%s", cursor, p.Name, p.URL, p.Database(), marker)
		if i == m.modalCursor {
			line = cursorRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter connect • esc cancel"))
	return b.String()
}

func (m Model) renderDBSelector() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Select database"))
	b.WriteString("\n\n")
	for i := 0; i < dbSelectorSize; i++ {
		cursor := "  "
		if i == m.modalCursor {
			cursor = "> "
		}
		current := ""
		if i == m.db {
			current = dimStyle.Render(" (current)")
		}
		line := fmt.Sprintf("%sdb %d%s", cursor, i, current)
		if i == m.modalCursor {
			line = cursorRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter select • esc cancel"))
	return b.String()
}

func (m Model) renderHelp() string {
	rows := []struct{ key, what string }{
		{"j/k, arrows", "move cursor"},
		{"enter / l", "open folder or load key"},
		{"backspace / h", "up one level"},
		{"esc", "back to root / close overlay"},
		{"tab", "switch tree/value focus"},
		{"/", "fuzzy search all keys"},
		{"space", "mark entry for multi-delete"},
		{"d", "delete entry under cursor"},
		{"D", "delete marked entries"},
		{"y", "copy key name"},
		{"Y", "copy value (or selected line)"},
		{": or c", "raw command"},
		{"p", "switch connection profile"},
		{"b", "switch logical database"},
		{"s", "server stats overlay"},
		{"r", "rescan keyspace"},
		{"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n", padRight(r.key, 16), r.what))
	}
	return b.String()
}

func (m Model) renderStatsOverlay() string {
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("Server stats"))
	b.WriteString("\n\n")
	if m.stats == nil {
		b.WriteString(dimStyle.Render("loading..."))
	} else {
		s := m.stats
		rows := []struct{ name, value string }{
			{"Version", s.Version},
			{"Mode", s.Mode},
			{"Role", s.Role},
			{"Uptime", s.UptimeHuman},
			{"Memory used", s.MemoryUsedHuman},
			{"Memory peak", s.MemoryPeakHuman},
			{"Memory RSS", s.MemoryRSSHuman},
			{"Clients", fmt.Sprintf("%d (%d blocked)", s.ConnectedClients, s.BlockedClients)},
			{"Replicas", fmt.Sprintf("%d", s.ConnectedSlaves)},
			{"Commands", fmt.Sprintf("%d (%d/s)", s.TotalCommands, s.OpsPerSec)},
			{"Hit rate", fmt.Sprintf("%.1f%% (%d hits / %d misses)", s.HitRate, s.KeyspaceHits, s.KeyspaceMisses)},
			{"CPU", fmt.Sprintf("sys %.2f user %.2f", s.CPUSys, s.CPUUser)},
		}
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("  %s %s\n", padRight(r.name, 14), r.value))
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("refreshed %s ago", redisx.FormatDuration(int64(s.Age().Seconds())))))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("s or esc to close"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Render(b.String()))
}
