package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	listW, detailW, bodyH := m.dimensions()

	left := m.viewList(listW-2, bodyH-2)
	if m.hostPicker {
		left = m.viewHostPicker(listW-2, bodyH-2)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.FocusedBorder.Width(listW-2).Height(bodyH-2).Render(left),
		m.styles.UnfocusedBorder.Width(detailW-2).Height(bodyH-2).Render(m.viewDetail()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.viewHeader(), body, m.viewFooter())
}

func (m Model) viewHeader() string {
	badge := m.styles.Stopped.Render("STOPPED")
	if m.running {
		badge = m.styles.Running.Render("LIVE")
	}
	count := fmt.Sprintf("%d/%d requests", len(m.visible), len(m.records))
	if n := len(m.hidden); n > 0 {
		count += fmt.Sprintf(" · %d hosts hidden", n)
	}
	line := badge + " " + m.styles.Title.Render("App Network Monitor") + "  " +
		m.styles.Muted.Render(m.status) + "  " + m.styles.Normal.Render(count)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) viewList(w, h int) string {
	var lines []string
	if m.searching || m.search.Value() != "" {
		lines = append(lines, m.search.View())
		h--
	}

	if len(m.visible) == 0 {
		hint := "Waiting for requests..."
		if len(m.records) > 0 {
			hint = "No requests match"
		}
		lines = append(lines, m.styles.Hint.Render(hint))
		return strings.Join(lines, "\n")
	}

	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}
	end := min(start+h, len(m.visible))
	for i := start; i < end; i++ {
		lines = append(lines, m.viewRow(i, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRow(i, w int) string {
	r := m.visible[i]
	status := padRight(statusLabel(r.StatusCode), 7)
	method := padRight(r.Method, 7)
	dur := padRight("", 8)
	if !r.IsPending() {
		dur = padRight(formatDuration(r.Elapsed()), 8)
	}
	pathW := max(w-len(status)-len(method)-len(dur)-1, 1)
	path := padRight(truncate(r.Host()+r.Path(), pathW), pathW)

	if i == m.cursor {
		return m.styles.Selected.Render(status + method + dur + path)
	}
	return m.styles.StatusStyle(r.StatusCode).Render(status) +
		m.styles.MethodStyle(r.Method).Render(method) +
		m.styles.Muted.Render(dur) +
		m.styles.Normal.Render(path)
}

func (m Model) viewHostPicker(w, h int) string {
	lines := []string{
		m.styles.Section.Render("Hosts"),
		m.styles.Hint.Render("space toggle · a show all · n hide all · esc close"),
	}
	if len(m.hosts) == 0 {
		lines = append(lines, m.styles.Hint.Render("No hosts yet"))
		return strings.Join(lines, "\n")
	}
	rows := max(h-len(lines), 1)
	start := 0
	if m.hostsCursor >= rows {
		start = m.hostsCursor - rows + 1
	}
	for i := start; i < min(start+rows, len(m.hosts)); i++ {
		host := m.hosts[i]
		box := "[x] "
		if m.hidden[host] {
			box = "[ ] "
		}
		line := box + truncate(host, w-4)
		if i == m.hostsCursor {
			line = m.styles.Selected.Render(padRight(line, w))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewDetail() string {
	var tabs []string
	for t := detailTab(0); t < tabCount; t++ {
		if t == m.tab {
			tabs = append(tabs, m.styles.TabActive.Render(t.String()))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(t.String()))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if r, ok := m.Selected(); ok {
		header = m.styles.MethodStyle(r.Method).Render(r.Method) + " " +
			m.styles.URL.Render(truncate(r.URL, m.detail.Width-len(r.Method)-1)) + "\n" + header
	} else {
		header = "\n" + header
	}
	return header + "\n" + m.detail.View()
}

func (m Model) viewFooter() string {
	if m.toast != "" {
		style := m.styles.Success
		if m.toastErr {
			style = m.styles.Error
		}
		return m.styles.StatusBar.Width(m.width).Render(style.Render(m.toast))
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.StatusBar.Width(m.width).Render(m.styles.Muted.Render(strings.Join(parts, " · ")))
}
