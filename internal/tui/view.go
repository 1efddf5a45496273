package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/riego/internal/ui"
)

const outputLines = 10

func (m modelTUI) View() string {
	var b strings.Builder

	title := ui.TitleStyle.Render("riego")
	if m.deps.Title != "" {
		title += "  " + ui.MutedStyle.Render(m.deps.Title)
	}
	if m.busy() {
		title += "  " + m.spin.View()
	}
	b.WriteString(title + "\n")

	b.WriteString(m.consoleView() + "\n")
	b.WriteString(m.zonesView() + "\n")
	b.WriteString(m.uploadView() + "\n")
	b.WriteString(m.logsView() + "\n")

	if m.notice != "" {
		b.WriteString(ui.MutedStyle.Render(m.notice) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m modelTUI) consoleView() string {
	input := m.cmdInput.View()
	if m.consoleBusy {
		input = ui.MutedStyle.Render(m.cmdInput.Value() + "  (running)")
	}
	out := clip(m.deps.Console.Out.Text(), outputLines)
	return ui.Frame("Console", input+"\n"+out, m.focus == secConsole, m.width)
}

func (m modelTUI) zonesView() string {
	var rows []string
	for i, btn := range m.deps.Zones.Buttons() {
		prefix := "  "
		if m.focus == secZones && i == m.zoneIdx {
			prefix = ui.SelectedStyle.Render(">") + " "
		}
		label := ui.ZoneStyle(btn.State).Render(btn.Label())
		if btn.Disabled {
			label = ui.MutedStyle.Render(btn.Label() + " …")
		}
		name := ""
		if btn.Name != "" {
			name = ui.MutedStyle.Render(" " + btn.Name)
		}
		dur := ""
		if i < len(m.durations) {
			dur = "  " + m.durations[i].View()
		}
		rows = append(rows, prefix+label+name+dur)
	}
	if len(rows) == 0 {
		rows = append(rows, ui.MutedStyle.Render("no zones configured"))
	}
	if st := m.deps.Zones.Status.Text(); st != "" {
		rows = append(rows, "", clip(st, 6))
	}
	return ui.Frame("Zones", strings.Join(rows, "\n"), m.focus == secZones, m.width)
}

func (m modelTUI) uploadView() string {
	parts := []string{m.fileInput.View(), m.content.View()}
	if m.uploadBusy {
		parts = append(parts, ui.PendingStyle.Render(m.deps.Upload.Out.Text()))
	} else if out := m.deps.Upload.Out.Text(); out != "" {
		parts = append(parts, clip(out, 6))
	}
	focused := m.focus == secFilename || m.focus == secContent
	return ui.Frame("Upload  (ctrl+s)", strings.Join(parts, "\n"), focused, m.width)
}

func (m modelTUI) logsView() string {
	state := ui.MutedStyle.Render("stopped")
	if m.deps.Logs.Running() {
		state = ui.SuccessStyle.Render(fmt.Sprintf("every %s", m.deps.Logs.Interval()))
	}
	toggle := lipgloss.NewStyle().Reverse(true).Padding(0, 1).Render(m.deps.Logs.Label())
	head := toggle + " " + state
	return ui.Frame("Logs", head+"\n"+m.logs.View(), m.focus == secLogs, m.width)
}

// clip keeps the last n lines of s.
func clip(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return ui.MutedStyle.Render(fmt.Sprintf("… %d more lines", len(lines)-n)) + "\n" +
		strings.Join(lines[len(lines)-n:], "\n")
}
