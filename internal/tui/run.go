package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/khanglvm/gh-repo-search/internal/route"
)

// Run shows the screen until the user quits or opens a repository, and
// returns the chosen route.
func Run(ctx context.Context, m *Model) (route.Route, error) {
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return route.Route{}, fmt.Errorf("interactive screen failed: %w", err)
	}
	return m.Route(), nil
}
