package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/firzaelbuho/bun-api-modular/internal/check"
	"github.com/firzaelbuho/bun-api-modular/internal/ledger"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CCCCCC"))
	routeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	problemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

func renderModules(modules []ledger.ModuleEntry) string {
	head := titleStyle.Render(fmt.Sprintf("MODULES · %d", len(modules)))
	if len(modules) == 0 {
		return boxStyle.Render(head + "\n" + mutedStyle.Render("No modules yet. Run init or create."))
	}

	width := 0
	for _, m := range modules {
		width = max(width, len(m.ModulePath))
	}

	lines := make([]string, 0, len(modules))
	for _, m := range modules {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			nameStyle.Render(fmt.Sprintf("%-*s", width, m.ModulePath)),
			routeStyle.Render(fmt.Sprintf("%-16s", m.Route)),
			mutedStyle.Render(string(m.CreatedBy)),
		))
	}
	return boxStyle.Render(head + "\n" + strings.Join(lines, "\n"))
}

func renderLog(fileName string, lines []string) string {
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := mutedStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func renderReport(report *check.Report) string {
	summary := mutedStyle.Render(fmt.Sprintf("%s · %d routes · %d modules", report.Registry, len(report.Entries), len(report.Modules)))
	if report.OK() {
		return okStyle.Render("✅ Registry, ledger and files agree") + "\n" + summary
	}

	lines := []string{problemStyle.Render(fmt.Sprintf("❌ %d issue(s) found", len(report.Issues))), summary}
	for _, issue := range report.Issues {
		lines = append(lines, fmt.Sprintf("  %s %s %s",
			problemStyle.Render(string(issue.Kind)),
			nameStyle.Render(issue.Subject),
			mutedStyle.Render(issue.Detail),
		))
	}
	return strings.Join(lines, "\n")
}
