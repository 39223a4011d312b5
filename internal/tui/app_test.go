package tui

import (
	"strings"
	"testing"

	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

func snapshot() []slurm.JobInfo {
	return []slurm.JobInfo{
		{ID: 1, Name: "rsstvlm-serve-a", State: "RUNNING", Partition: "gpu"},
		{ID: 2, Name: "rsstvlm-papers-b", State: "PENDING", Partition: "cpu"},
		{ID: 3, Name: "rsstvlm-graphrag-c", State: "FAILED", Partition: "gpu"},
	}
}

func TestFilterCycle(t *testing.T) {
	app := NewApp(snapshot())
	if len(app.Filtered) != 3 {
		t.Fatalf("All filter shows %d jobs, want 3", len(app.Filtered))
	}

	app.CycleFilter() // Running
	if len(app.Filtered) != 1 || app.Jobs[app.Filtered[0]].ID != 1 {
		t.Errorf("Running filter: %v", app.Filtered)
	}

	app.CycleFilter() // Pending
	if len(app.Filtered) != 1 || app.Jobs[app.Filtered[0]].ID != 2 {
		t.Errorf("Pending filter: %v", app.Filtered)
	}

	app.CycleFilter() // Finished
	if len(app.Filtered) != 1 || app.Jobs[app.Filtered[0]].ID != 3 {
		t.Errorf("Finished filter: %v", app.Filtered)
	}

	app.CycleFilter() // back to All
	if app.Filter != FilterAll {
		t.Errorf("filter cycle should wrap to All, got %s", app.Filter.Label())
	}
}

func TestSetJobs_KeepsSelection(t *testing.T) {
	app := NewApp(snapshot())
	app.MoveDown() // select job 2
	if got := app.Selected(); got == nil || got.ID != 2 {
		t.Fatalf("selected = %+v", got)
	}

	// refresh with job 1 gone; selection should follow job 2
	app.SetJobs([]slurm.JobInfo{
		{ID: 2, Name: "rsstvlm-papers-b", State: "RUNNING"},
		{ID: 3, Name: "rsstvlm-graphrag-c", State: "FAILED"},
	})
	if got := app.Selected(); got == nil || got.ID != 2 {
		t.Errorf("selection lost on refresh: %+v", got)
	}
}

func TestSetJobs_ClampsWhenShrunk(t *testing.T) {
	app := NewApp(snapshot())
	app.End()
	app.SetJobs(snapshot()[:1])
	if got := app.Selected(); got == nil || got.ID != 1 {
		t.Errorf("selection not clamped: %+v", got)
	}
}

func TestMoveBounds(t *testing.T) {
	app := NewApp(snapshot())
	app.MoveUp()
	if app.SelectedRow != 0 {
		t.Errorf("MoveUp at top moved to %d", app.SelectedRow)
	}
	app.End()
	app.MoveDown()
	if app.SelectedRow != 2 {
		t.Errorf("MoveDown at bottom moved to %d", app.SelectedRow)
	}
}

func TestToggleDetail_NeedsSelection(t *testing.T) {
	app := NewApp(nil)
	app.ToggleDetail()
	if app.ShowDetail {
		t.Error("detail should not open with no jobs")
	}
}

func TestRender_ShowsJobsAndStatus(t *testing.T) {
	app := NewApp(snapshot())
	app.Width, app.Height = 100, 30
	out := Render(app)
	for _, want := range []string{"rsstvlm-serve-a", "1 running, 1 pending", "JOB ID"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}
}

func TestRender_Detail(t *testing.T) {
	app := NewApp(snapshot())
	app.ToggleDetail()
	out := Render(app)
	if !strings.Contains(out, "Job ID:     1") {
		t.Errorf("detail render missing job id:\n%s", out)
	}
}
