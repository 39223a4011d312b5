package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

// Fetcher returns the current queue snapshot; Run calls it on every refresh.
type Fetcher func(ctx context.Context) ([]slurm.JobInfo, error)

// refreshInterval is how often the queue is re-polled.
const refreshInterval = 3 * time.Second

// Run starts the watch TUI and blocks until the user quits.
func Run(ctx context.Context, fetch Fetcher) error {
	jobs, err := fetch(ctx)
	if err != nil {
		return err
	}
	m := &model{app: NewApp(jobs), fetch: fetch, ctx: ctx}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

type refreshMsg struct {
	jobs []slurm.JobInfo
	err  error
}

type model struct {
	app   *App
	fetch Fetcher
	ctx   context.Context
}

func (m *model) Init() tea.Cmd {
	return m.tick()
}

func (m *model) tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		jobs, err := m.fetch(m.ctx)
		return refreshMsg{jobs: jobs, err: err}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.app.Width = msg.Width
		m.app.Height = msg.Height
		return m, nil
	case refreshMsg:
		if msg.err != nil {
			m.app.LastError = msg.err.Error()
		} else {
			m.app.LastError = ""
			m.app.SetJobs(msg.jobs)
		}
		return m, m.tick()
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.app.ShouldQuit {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		if m.app.ShowDetail {
			m.app.ShowDetail = false
		} else {
			m.app.ShouldQuit = true
		}
	case "up", "k":
		m.app.MoveUp()
	case "down", "j":
		m.app.MoveDown()
	case "home", "g":
		m.app.Home()
	case "end", "G":
		m.app.End()
	case "f":
		m.app.CycleFilter()
	case "enter":
		m.app.ToggleDetail()
	}
}

func (m *model) View() string {
	return Render(m.app)
}
