package tui

import (
	"fmt"

	"github.com/pithecene-io/deckhand/journal"
)

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	switch viewType {
	case "history":
		records, ok := data.([]*journal.Record)
		if !ok {
			return fmt.Errorf("invalid data type for history view")
		}
		return RunHistoryTUI(records)
	}

	return fmt.Errorf("unknown view type: %s", viewType)
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only the read-only history view supports TUI.
func IsTUISupported(viewType string) bool {
	return viewType == "history"
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{"history"}
}
