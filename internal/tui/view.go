package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/khanglvm/gh-repo-search/internal/github"
)

// dateLayout renders last-used dates as "10. 16.".
const dateLayout = "01. 02."

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.screen == screenResults {
		return m.viewResults()
	}
	return m.viewSearch()
}

func (m *Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("GitHub Repository Search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	rows := m.rows()
	showingSuggestions := m.input.Focused() && strings.TrimSpace(m.input.Value()) != ""

	switch {
	case showingSuggestions:
	case len(rows) == 0:
		b.WriteString(m.styles.muted.Render("No recent searches."))
		b.WriteString("\n")
	default:
		b.WriteString(m.styles.muted.Render("Recent searches"))
		b.WriteString("\n")
	}

	width := 0
	for _, r := range rows {
		if len(r.query) > width {
			width = len(r.query)
		}
	}

	for i, r := range rows {
		marker, style := "  ", m.styles.normal
		if i == m.cursor {
			marker, style = "› ", m.styles.selected
		}

		if r.raw {
			b.WriteString(style.Render(fmt.Sprintf("%sSearch %q", marker, r.query)))
			b.WriteString("\n")
			continue
		}

		line := style.Render(fmt.Sprintf("%s%-*s", marker, width, r.query))
		b.WriteString(line + "  " + m.styles.date.Render(r.date.Local().Format(dateLayout)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.help.Render("enter search • ↑/↓ select • ctrl+d delete • ctrl+x clear all • esc cancel • ctrl+c quit"))
	return b.String()
}

func (m *Model) viewResults() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render(fmt.Sprintf("Repositories for %q", m.term)))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.styles.errorText.Render("Failed to load data."))
		b.WriteString("\n")
		b.WriteString(m.styles.errorText.Render(m.err.Error()))
		b.WriteString("\n")
		if github.IsRateLimited(m.err) {
			b.WriteString(m.styles.muted.Render("💡 " + github.RateLimitHint))
			b.WriteString("\n")
		}
		b.WriteString(m.styles.help.Render("r retry • esc back • ctrl+c quit"))
		return b.String()

	case m.loading && len(m.results) == 0:
		b.WriteString(m.spinner.View() + " Searching…")
		return b.String()

	case len(m.results) == 0:
		b.WriteString(m.styles.muted.Render("No repositories found."))
		b.WriteString("\n")
		b.WriteString(m.styles.help.Render("esc back • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.styles.count.Render(humanize.Comma(int64(m.total)) + " repositories"))
	b.WriteString("\n\n")

	start, end := m.window()
	for i := start; i < end; i++ {
		repo := m.results[i]
		marker, style := "  ", m.styles.normal
		if i == m.resultCursor {
			marker, style = "› ", m.styles.selected
		}
		b.WriteString(style.Render(marker + repoName(repo)))
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("  ★ %s", humanize.Comma(int64(repo.StargazersCount)))))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("showing %s of %s", humanize.Comma(int64(len(m.results))), humanize.Comma(int64(m.total)))
	if m.loading {
		footer += "  " + m.spinner.View() + " loading more…"
	}
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(footer))
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render("enter open • ↑/↓ move • n next page • esc back • ctrl+c quit"))
	return b.String()
}

// window returns the slice of results that fits the terminal, keeping the
// cursor visible.
func (m *Model) window() (int, int) {
	visible := m.height - 9
	if visible < 5 {
		visible = 5
	}
	if len(m.results) <= visible {
		return 0, len(m.results)
	}

	start := m.resultCursor - visible/2
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(m.results) {
		end = len(m.results)
		start = end - visible
	}
	return start, end
}
