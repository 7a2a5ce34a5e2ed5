package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/khanglvm/gh-repo-search/internal/github"
	"github.com/khanglvm/gh-repo-search/internal/history"
)

// suggestionsMsg signals that the session recomputed its suggestions.
// The session's current list is authoritative, not the payload.
type suggestionsMsg struct{}

// pageMsg carries one fetched page of results. Pages from a superseded
// search carry an old gen and are dropped.
type pageMsg struct {
	gen   int
	items []github.Repository
	total int
	err   error
}

// waitForSuggestions blocks until the session publishes again.
func waitForSuggestions(ch <-chan []history.Record) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return suggestionsMsg{}
	}
}

// notify replaces any unread update with list without blocking.
func notify(ch chan []history.Record, list []history.Record) {
	for {
		select {
		case ch <- list:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
