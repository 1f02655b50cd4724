package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/deckhand/journal"
	"github.com/pithecene-io/deckhand/types"
)

// HistoryModel is a Bubble Tea model for browsing journaled runs.
type HistoryModel struct {
	records  []*journal.Record
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewHistoryModel creates a history model. Records are shown in the
// order given; the cursor starts on the most recent (last) record.
func NewHistoryModel(records []*journal.Record) HistoryModel {
	cursor := 0
	if len(records) > 0 {
		cursor = len(records) - 1
	}
	return HistoryModel{
		records: records,
		cursor:  cursor,
	}
}

// Init implements tea.Model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Run History"))
	b.WriteString("\n\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")
	b.WriteString(m.renderList())

	if len(m.records) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDetail(m.records[m.cursor]))
	}

	help := HelpStyle.Render("↑/↓ select · q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m HistoryModel) renderStats() string {
	var completed, partial, failed int
	for _, rec := range m.records {
		switch rec.Status {
		case types.StatusCompleted:
			completed++
		case types.StatusPartial:
			partial++
		case types.StatusError:
			failed++
		}
	}

	boxes := []string{
		m.renderStatBox("Total", len(m.records), highlightColor),
		m.renderStatBox("Completed", completed, successColor),
		m.renderStatBox("Partial", partial, warningColor),
		m.renderStatBox("Error", failed, errorColor),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m HistoryModel) renderList() string {
	if len(m.records) == 0 {
		return ValueStyle.Render("(no runs recorded)")
	}

	var b strings.Builder
	for i, rec := range m.records {
		line := fmt.Sprintf("%-24s %-10s %s",
			rec.RunID,
			rec.Status,
			rec.StartedAt.Format("2006-01-02 15:04:05"))

		if i == m.cursor {
			b.WriteString(SelectedRowStyle.Render("> " + line))
		} else {
			b.WriteString(StatusStyle(string(rec.Status)).Render("  " + line))
		}
		if i < len(m.records)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m HistoryModel) renderDetail(rec *journal.Record) string {
	var b strings.Builder

	writeField := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(label+":"), ValueStyle.Render(value)))
	}

	writeField("Run ID", rec.RunID)
	writeField("Source", rec.Source)
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Status:"),
		StatusStyle(string(rec.Status)).Render(string(rec.Status))))
	writeField("Started", rec.StartedAt.Format("2006-01-02 15:04:05"))
	writeField("Duration", (time.Duration(rec.DurationMs) * time.Millisecond).String())
	if rec.HostedURL != "" {
		writeField("Slides", rec.HostedURL)
	}
	writeField("Email sent", fmt.Sprintf("%t", rec.EmailSent))
	if len(rec.Warnings) > 0 {
		writeField("Warnings", strings.Join(rec.Warnings, ", "))
	}

	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m HistoryModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

// RunHistoryTUI runs the history TUI.
func RunHistoryTUI(records []*journal.Record) error {
	model := NewHistoryModel(records)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
