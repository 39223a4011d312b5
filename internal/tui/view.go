package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	styleSelected = lipgloss.NewStyle().Background(lipgloss.Color("8")).Foreground(lipgloss.Color("15")).Bold(true)
	styleRunning  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stylePending  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleStatus   = lipgloss.NewStyle().Background(lipgloss.Color("10")).Foreground(lipgloss.Color("0")).Bold(true)
)

// Render returns the full TUI view for the app.
func Render(app *App) string {
	w := app.Width
	if w <= 0 {
		w = 80
	}
	h := app.Height
	if h <= 0 {
		h = 24
	}

	title := styleTitle.Render("rsstvlm queue") +
		styleDim.Render("   q quit · j/k move · f filter · enter detail")
	mainHeight := h - 3
	if mainHeight < 5 {
		mainHeight = 5
	}

	var main string
	if app.ShowDetail {
		main = renderDetail(app, w)
	} else {
		main = renderTable(app, mainHeight)
	}
	status := styleStatus.Render(" " + app.StatusLine() + " ")

	return lipgloss.JoinVertical(lipgloss.Left, title, "", main, status)
}

func renderTable(app *App, height int) string {
	if len(app.Filtered) == 0 {
		return styleDim.Render("  no jobs match the current filter")
	}
	header := fmt.Sprintf("  %-10s %-28s %-10s %-12s %-10s %s",
		"JOB ID", "NAME", "PARTITION", "STATE", "ELAPSED", "NODE/REASON")
	lines := []string{styleDim.Render(header)}

	start := 0
	if app.SelectedRow >= height-1 {
		start = app.SelectedRow - (height - 2)
	}
	for row := start; row < len(app.Filtered) && len(lines) < height; row++ {
		j := &app.Jobs[app.Filtered[row]]
		where := j.NodeList
		if where == "" {
			where = j.Reason
		}
		line := fmt.Sprintf("  %-10d %-28s %-10s %-12s %-10s %s",
			j.ID, truncate(j.Name, 28), j.Partition, j.State, j.Elapsed, where)
		if row == app.SelectedRow {
			lines = append(lines, styleSelected.Render(line))
		} else {
			lines = append(lines, stateStyle(j).Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func renderDetail(app *App, width int) string {
	j := app.Selected()
	if j == nil {
		return styleDim.Render("  nothing selected")
	}
	where := j.NodeList
	if where == "" {
		where = j.Reason
	}
	lines := []string{
		styleTitle.Render("  " + j.Name),
		"",
		fmt.Sprintf("  Job ID:     %d", j.ID),
		fmt.Sprintf("  Partition:  %s", j.Partition),
		"  State:      " + stateStyle(j).Render(j.State),
		fmt.Sprintf("  Elapsed:    %s", j.Elapsed),
		fmt.Sprintf("  Nodes:      %d (%s)", j.Nodes, where),
	}
	if j.ExitCode != 0 {
		lines = append(lines, styleFailed.Render(fmt.Sprintf("  Exit code:  %d", j.ExitCode)))
	}
	lines = append(lines, "", styleDim.Render("  esc back"))
	return strings.Join(lines, "\n")
}

func stateStyle(j *slurm.JobInfo) lipgloss.Style {
	switch j.State {
	case "RUNNING":
		return styleRunning
	case "PENDING", "CONFIGURING":
		return stylePending
	case "FAILED", "TIMEOUT", "NODE_FAIL", "OUT_OF_MEMORY":
		return styleFailed
	default:
		return styleNormal
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
