package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/deckhand/journal"
	"github.com/pithecene-io/deckhand/types"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"history", true},

		// Not supported: everything else
		{"run", false},
		{"deck", false},
		{"auth", false},
		{"version", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()
	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("version", nil); err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func TestRun_InvalidDataType(t *testing.T) {
	if err := Run("history", "not a record slice"); err == nil {
		t.Error("Expected error for invalid data type")
	}
}

func sampleRecords() []*journal.Record {
	return []*journal.Record{
		{
			RunID:      "run-1700000000000000001",
			Source:     "meeting_2024-01-15.pdf",
			Status:     types.StatusCompleted,
			StartedAt:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			DurationMs: 125000,
			HostedURL:  "https://docs.google.com/presentation/d/abc/edit",
			EmailSent:  true,
		},
		{
			RunID:      "run-1700000000000000002",
			Source:     "standup.pdf",
			Status:     types.StatusPartial,
			StartedAt:  time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC),
			DurationMs: 600000,
			Warnings:   []string{"timeout after 600s"},
		},
		{
			RunID:      "run-1700000000000000003",
			Source:     "retro.pdf",
			Status:     types.StatusError,
			StartedAt:  time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC),
			DurationMs: 3000,
		},
	}
}

func TestHistoryModel_View(t *testing.T) {
	m := NewHistoryModel(sampleRecords())
	view := m.View()

	if !strings.Contains(view, "Run History") {
		t.Errorf("view missing title: %s", view)
	}
	for _, id := range []string{"run-1700000000000000001", "run-1700000000000000002", "run-1700000000000000003"} {
		if !strings.Contains(view, id) {
			t.Errorf("view missing record %s", id)
		}
	}
	// Stat labels present.
	for _, label := range []string{"Total", "Completed", "Partial", "Error"} {
		if !strings.Contains(view, label) {
			t.Errorf("view missing stat box %q", label)
		}
	}
}

func TestHistoryModel_CursorStartsOnLatest(t *testing.T) {
	m := NewHistoryModel(sampleRecords())
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (last record)", m.cursor)
	}
}

func TestHistoryModel_Navigation(t *testing.T) {
	m := NewHistoryModel(sampleRecords())

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	next, _ := m.Update(up)
	m = next.(HistoryModel)
	if m.cursor != 1 {
		t.Errorf("cursor after up = %d, want 1", m.cursor)
	}

	next, _ = m.Update(down)
	m = next.(HistoryModel)
	if m.cursor != 2 {
		t.Errorf("cursor after down = %d, want 2", m.cursor)
	}

	// Down at the end stays put.
	next, _ = m.Update(down)
	m = next.(HistoryModel)
	if m.cursor != 2 {
		t.Errorf("cursor after down at end = %d, want 2", m.cursor)
	}
}

func TestHistoryModel_QuitClearsView(t *testing.T) {
	m := NewHistoryModel(sampleRecords())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(HistoryModel)
	if cmd == nil {
		t.Error("expected quit command")
	}
	if m.View() != "" {
		t.Error("view should be empty after quit")
	}
}

func TestHistoryModel_EmptyRecords(t *testing.T) {
	m := NewHistoryModel(nil)
	view := m.View()
	if !strings.Contains(view, "(no runs recorded)") {
		t.Errorf("empty history should say so, got: %s", view)
	}
}
