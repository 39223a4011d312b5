package cli

import (
	"strings"
	"testing"

	"github.com/yaoyhu/rsstvlm/internal/config"
)

func testConfig(t *testing.T) {
	t.Helper()
	old := cfg
	cfg = config.Default()
	t.Cleanup(func() { cfg = old })
}

func TestJobName(t *testing.T) {
	got := jobName("serve", "ab12cd34")
	if got != "rsstvlm-serve-ab12cd34" {
		t.Errorf("jobName = %q", got)
	}
}

func TestOutputPath_ResolvesJobID(t *testing.T) {
	testConfig(t)
	pattern := outputPath("serve", "ab12cd34")
	if !strings.Contains(pattern, "serve-ab12cd34-%j.out") {
		t.Errorf("outputPath = %q, want %%j pattern", pattern)
	}
	resolved := resolveOutputPath(pattern, 10771)
	if strings.Contains(resolved, "%j") {
		t.Errorf("resolveOutputPath left %%j in %q", resolved)
	}
	if !strings.Contains(resolved, "serve-ab12cd34-10771.out") {
		t.Errorf("resolveOutputPath = %q", resolved)
	}
}

func TestRunID_ShortAndUnique(t *testing.T) {
	a, b := runID(), runID()
	if len(a) != 8 {
		t.Errorf("runID length = %d, want 8", len(a))
	}
	if a == b {
		t.Errorf("two runIDs collided: %q", a)
	}
}

func TestProlog(t *testing.T) {
	testConfig(t)
	lines := prolog()
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "conda activate") {
		t.Errorf("prolog missing conda activate: %q", joined)
	}
}

func TestParseJobIDs(t *testing.T) {
	ids, err := parseJobIDs([]string{"10771", "10772"})
	if err != nil {
		t.Fatalf("parseJobIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 10771 || ids[1] != 10772 {
		t.Errorf("parseJobIDs = %v", ids)
	}
	if _, err := parseJobIDs([]string{"abc"}); err == nil {
		t.Error("parseJobIDs accepted non-numeric id")
	}
	if _, err := parseJobIDs([]string{"-1"}); err == nil {
		t.Error("parseJobIDs accepted negative id")
	}
}

func TestBaseJob_SeedsClusterDefaults(t *testing.T) {
	testConfig(t)
	job := baseJob("graphrag", "ab12cd34")
	if job.Name != "rsstvlm-graphrag-ab12cd34" {
		t.Errorf("Name = %q", job.Name)
	}
	if job.Partition != cfg.Cluster.Partition {
		t.Errorf("Partition = %q, want %q", job.Partition, cfg.Cluster.Partition)
	}
	if job.NTasks != 1 {
		t.Errorf("NTasks = %d, want 1", job.NTasks)
	}
	if job.Output == "" {
		t.Error("Output not set")
	}
}
