// Package tui is the live queue view: the user's launcher jobs, refreshed on
// a timer, with keyboard navigation and a per-job detail pane.
package tui

import (
	"fmt"

	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

// StateFilter filters the job list by scheduler state (cycle with the same key).
type StateFilter int

const (
	FilterAll StateFilter = iota
	FilterRunning
	FilterPending
	FilterFinished
)

func (f StateFilter) Label() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterRunning:
		return "Running"
	case FilterPending:
		return "Pending"
	case FilterFinished:
		return "Finished"
	default:
		return "All"
	}
}

func (f StateFilter) Next() StateFilter {
	switch f {
	case FilterAll:
		return FilterRunning
	case FilterRunning:
		return FilterPending
	case FilterPending:
		return FilterFinished
	default:
		return FilterAll
	}
}

func (f StateFilter) matches(j *slurm.JobInfo) bool {
	switch f {
	case FilterRunning:
		return j.State == "RUNNING"
	case FilterPending:
		return j.State == "PENDING" || j.State == "CONFIGURING"
	case FilterFinished:
		return !j.Running()
	default:
		return true
	}
}

// App holds the TUI state (jobs, filter, selection).
type App struct {
	ShouldQuit bool
	Width      int
	Height     int

	Jobs     []slurm.JobInfo
	Filtered []int // indices into Jobs
	Filter   StateFilter

	SelectedRow int
	ShowDetail  bool

	LastError string
}

// NewApp builds the app around an initial job snapshot.
func NewApp(jobs []slurm.JobInfo) *App {
	a := &App{Jobs: jobs}
	a.applyFilter()
	return a
}

// SetJobs replaces the snapshot on refresh, keeping the selection on the
// same job when it still exists.
func (a *App) SetJobs(jobs []slurm.JobInfo) {
	var selectedID int
	if cur := a.Selected(); cur != nil {
		selectedID = cur.ID
	}
	a.Jobs = jobs
	a.applyFilter()
	if selectedID != 0 {
		for row, idx := range a.Filtered {
			if a.Jobs[idx].ID == selectedID {
				a.SelectedRow = row
				return
			}
		}
	}
	a.clampSelection()
}

// Selected returns the job under the cursor, or nil.
func (a *App) Selected() *slurm.JobInfo {
	if a.SelectedRow < 0 || a.SelectedRow >= len(a.Filtered) {
		return nil
	}
	return &a.Jobs[a.Filtered[a.SelectedRow]]
}

// CycleFilter advances the state filter.
func (a *App) CycleFilter() {
	a.Filter = a.Filter.Next()
	a.applyFilter()
	a.clampSelection()
}

func (a *App) applyFilter() {
	a.Filtered = a.Filtered[:0]
	for i := range a.Jobs {
		if a.Filter.matches(&a.Jobs[i]) {
			a.Filtered = append(a.Filtered, i)
		}
	}
}

func (a *App) clampSelection() {
	if a.SelectedRow >= len(a.Filtered) {
		a.SelectedRow = len(a.Filtered) - 1
	}
	if a.SelectedRow < 0 {
		a.SelectedRow = 0
	}
}

func (a *App) MoveUp() {
	if a.SelectedRow > 0 {
		a.SelectedRow--
	}
}

func (a *App) MoveDown() {
	if a.SelectedRow < len(a.Filtered)-1 {
		a.SelectedRow++
	}
}

func (a *App) Home() { a.SelectedRow = 0 }

func (a *App) End() {
	if n := len(a.Filtered); n > 0 {
		a.SelectedRow = n - 1
	}
}

func (a *App) ToggleDetail() {
	if a.Selected() != nil {
		a.ShowDetail = !a.ShowDetail
	}
}

// StatusLine summarizes the snapshot for the status bar.
func (a *App) StatusLine() string {
	var running, pending int
	for i := range a.Jobs {
		switch a.Jobs[i].State {
		case "RUNNING":
			running++
		case "PENDING":
			pending++
		}
	}
	line := fmt.Sprintf("filter: %s  %d running, %d pending", a.Filter.Label(), running, pending)
	if a.LastError != "" {
		line += "  ⚠ " + a.LastError
	}
	return line
}
