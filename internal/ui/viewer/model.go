// Package viewer is the interactive terminal front end: a live, searchable
// list of captured transactions with a tabbed detail pane.
package viewer

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/appmonitor/internal/export"
	"github.com/sadopc/appmonitor/internal/record"
	"github.com/sadopc/appmonitor/internal/ui/theme"
)

const toastDuration = 2 * time.Second

type clearToastMsg struct{ seq int }

// copyFunc writes text to the system clipboard.
type copyFunc func(string) error

// Model is the root Bubble Tea model of the viewer.
type Model struct {
	svc    Service
	store  Store
	styles theme.Styles
	keys   KeyMap
	copy   copyFunc

	records []record.LogRecord
	visible []record.LogRecord
	hosts   []string
	hidden  map[string]bool

	cursor     int
	selectedID string
	tab        detailTab

	search    textinput.Model
	searching bool

	hostPicker  bool
	hostsCursor int

	detail viewport.Model

	running bool
	status  string

	toast    string
	toastErr bool
	toastSeq int

	width  int
	height int
	ready  bool
}

// New creates the viewer model.
func New(svc Service, store Store, t theme.Theme) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by url, method or status"
	ti.CharLimit = 256

	return Model{
		svc:    svc,
		store:  store,
		styles: theme.NewStyles(t),
		keys:   DefaultKeyMap(),
		copy:   clipboard.WriteAll,
		hidden: make(map[string]bool),
		search: ti,
		detail: viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case SnapshotMsg:
		m.records = msg.Records
		m.hosts = msg.Hosts
		m.running = msg.Running
		m.status = msg.Status
		m.refresh()
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.hostPicker {
			return m.updateHostPicker(msg), nil
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.visible) - 1)
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		m.renderDetail(true)
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.renderDetail(true)
	case key.Matches(msg, m.keys.ScrollDown):
		m.detail.SetYOffset(m.detail.YOffset + max(1, m.detail.Height/2))
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.SetYOffset(m.detail.YOffset - max(1, m.detail.Height/2))
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Hosts):
		m.hostPicker = true
		m.hostsCursor = 0
	case key.Matches(msg, m.keys.ToggleServe):
		svc := m.svc
		return m, func() tea.Msg {
			svc.Toggle()
			return nil
		}
	case key.Matches(msg, m.keys.Clear):
		m.store.Clear()
		m.records = nil
		m.hosts = nil
		m.selectedID = ""
		m.refresh()
		return m, m.showToast("Cleared", false)
	case key.Matches(msg, m.keys.CopyCurl):
		return m.copyCurl()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.refresh()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.refresh()
	return m, cmd
}

func (m Model) updateHostPicker(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc", "f", "q":
		m.hostPicker = false
	case "j", "down":
		if m.hostsCursor < len(m.hosts)-1 {
			m.hostsCursor++
		}
	case "k", "up":
		if m.hostsCursor > 0 {
			m.hostsCursor--
		}
	case " ", "enter":
		if m.hostsCursor < len(m.hosts) {
			m.toggleHost(m.hosts[m.hostsCursor])
		}
	case "a":
		m.showAllHosts()
	case "n":
		m.hideAllHosts()
	}
	return m
}

func (m *Model) toggleHost(host string) {
	if m.hidden[host] {
		delete(m.hidden, host)
	} else {
		m.hidden[host] = true
	}
	m.refresh()
}

func (m *Model) showAllHosts() {
	m.hidden = make(map[string]bool)
	m.refresh()
}

func (m *Model) hideAllHosts() {
	for _, h := range m.hosts {
		m.hidden[h] = true
	}
	m.refresh()
}

func (m Model) copyCurl() (tea.Model, tea.Cmd) {
	r, ok := m.Selected()
	if !ok {
		return m, m.showToast("Nothing selected", true)
	}
	if err := m.copy(export.AsCurl(r)); err != nil {
		return m, m.showToast("Clipboard error: "+err.Error(), true)
	}
	return m, m.showToast("Copied as cURL", false)
}

func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastErr = isErr
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

// Selected returns the highlighted record.
func (m Model) Selected() (record.LogRecord, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return record.LogRecord{}, false
	}
	return m.visible[m.cursor], true
}

// Visible returns the listed records, newest first.
func (m Model) Visible() []record.LogRecord { return m.visible }

// refresh recomputes the visible list and keeps the selection on the same
// record when it is still listed.
func (m *Model) refresh() {
	m.visible = visibleRecords(m.records, m.search.Value(), m.hidden)
	if m.hostsCursor >= len(m.hosts) {
		m.hostsCursor = max(0, len(m.hosts)-1)
	}

	cursor := -1
	for i, r := range m.visible {
		if r.ID == m.selectedID {
			cursor = i
			break
		}
	}
	if cursor < 0 {
		cursor = min(m.cursor, len(m.visible)-1)
	}
	m.cursor = max(cursor, 0)

	prev := m.selectedID
	m.selectedID = ""
	if r, ok := m.Selected(); ok {
		m.selectedID = r.ID
	}
	m.renderDetail(prev != m.selectedID)
}

func (m *Model) moveCursor(i int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(i, 0), len(m.visible)-1)
	m.selectedID = m.visible[m.cursor].ID
	m.renderDetail(true)
}

func (m *Model) renderDetail(reset bool) {
	r, ok := m.Selected()
	if !ok {
		m.detail.SetContent(m.styles.Hint.Render("Select a request to see details"))
		m.detail.GotoTop()
		return
	}
	m.detail.SetContent(renderDetail(r, m.tab, m.styles, m.detail.Width))
	if reset {
		m.detail.GotoTop()
	}
}

// Layout: header, body (list | detail), footer.
func (m *Model) resize() {
	listW, detailW, bodyH := m.dimensions()
	m.search.Width = max(listW-6, 1)
	m.detail.Width = max(detailW-2, 1)
	m.detail.Height = max(bodyH-4, 1)
	m.renderDetail(false)
}

func (m Model) dimensions() (listW, detailW, bodyH int) {
	bodyH = max(m.height-2, 3)
	listW = m.width * 2 / 5
	if m.width < 80 {
		listW = m.width / 2
	}
	detailW = m.width - listW
	return listW, detailW, bodyH
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func padRight(s string, w int) string {
	if n := len([]rune(s)); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
