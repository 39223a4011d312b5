package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yaoyhu/rsstvlm/internal/hardware"
	"github.com/yaoyhu/rsstvlm/internal/models"
	"github.com/yaoyhu/rsstvlm/internal/plan"
	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

func sampleJobs() []slurm.JobInfo {
	return []slurm.JobInfo{
		{ID: 123, Name: "rsstvlm-serve-a1b2", Partition: "gpu", State: "RUNNING", Elapsed: "1:02:03", Nodes: 1, Reason: "gpu-node-12"},
		{ID: 124, Name: "rsstvlm-papers-c3d4", Partition: "cpu", State: "PENDING", Elapsed: "0:00", Nodes: 1, Reason: "(Priority)"},
	}
}

func TestQueue_Table(t *testing.T) {
	var buf bytes.Buffer
	Queue(&buf, sampleJobs(), false)
	out := buf.String()
	for _, want := range []string{"123", "rsstvlm-serve-a1b2", "RUNNING", "(Priority)"} {
		if !strings.Contains(out, want) {
			t.Errorf("queue output missing %q:\n%s", want, out)
		}
	}
}

func TestQueue_Empty(t *testing.T) {
	var buf bytes.Buffer
	Queue(&buf, nil, false)
	if !strings.Contains(buf.String(), "No jobs") {
		t.Errorf("empty queue output: %q", buf.String())
	}
}

func TestQueue_JSON(t *testing.T) {
	var buf bytes.Buffer
	Queue(&buf, sampleJobs(), true)
	var parsed struct {
		Jobs []slurm.JobInfo `json:"jobs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("queue JSON: %v", err)
	}
	if len(parsed.Jobs) != 2 || parsed.Jobs[0].ID != 123 {
		t.Errorf("queue JSON roundtrip: %+v", parsed)
	}
}

func TestPresets_TableAndJSON(t *testing.T) {
	node := plan.NodeShape{GPUs: 4, VRAMPerGB: 80}
	plans := plan.AnalyzeAll(models.All(), node, 0)

	var buf bytes.Buffer
	Presets(&buf, plans, node, false)
	out := buf.String()
	if !strings.Contains(out, "qwen3-vl-30b-instruct") {
		t.Errorf("preset table missing preset id:\n%s", out)
	}
	if !strings.Contains(out, "4x 80 GB") {
		t.Errorf("preset table missing node shape:\n%s", out)
	}

	buf.Reset()
	Presets(&buf, plans, node, true)
	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("presets JSON: %v", err)
	}
	if _, ok := parsed["presets"]; !ok {
		t.Error("presets JSON missing presets key")
	}
}

func TestPreset_Detail(t *testing.T) {
	node := plan.NodeShape{GPUs: 4, VRAMPerGB: 80}
	p := plan.Analyze(models.Qwen3VL30BInstruct, node, 0)

	var buf bytes.Buffer
	Preset(&buf, p, node, false)
	out := buf.String()
	for _, want := range []string{
		"Qwen3-VL 30B A3B Instruct",
		"Qwen/Qwen3-VL-30B-A3B-Instruct",
		"tensor-parallel-size: 4",
		"Fit:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preset detail missing %q:\n%s", want, out)
		}
	}
}

func TestNode_WithSlurmEnv(t *testing.T) {
	specs := &hardware.NodeSpecs{
		Hostname:       "gpu-node-12",
		CPUName:        "AMD EPYC 7543",
		TotalCPUCores:  64,
		TotalRAMGB:     1024,
		AvailableRAMGB: 900,
		Gpus: []hardware.GpuInfo{
			{Index: 0, Name: "NVIDIA A100-SXM4-80GB", VRAMGB: 80, UsedGB: 1},
		},
		Slurm: hardware.SlurmEnv{JobID: "123", JobName: "rsstvlm-serve", NodeList: "gpu-node-12", VisibleGPUs: "0,1"},
	}
	var buf bytes.Buffer
	Node(&buf, specs, false)
	out := buf.String()
	for _, want := range []string{"gpu-node-12", "NVIDIA A100", "SLURM allocation", "CUDA_VISIBLE_DEVICES: 0,1"} {
		if !strings.Contains(out, want) {
			t.Errorf("node output missing %q:\n%s", want, out)
		}
	}
}

func TestNode_NoGPU(t *testing.T) {
	var buf bytes.Buffer
	Node(&buf, &hardware.NodeSpecs{Hostname: "login1"}, false)
	if !strings.Contains(buf.String(), "GPU: Not detected") {
		t.Errorf("node output: %q", buf.String())
	}
}

func TestModels_Output(t *testing.T) {
	var buf bytes.Buffer
	Models(&buf, []string{"a", "b"}, false)
	if buf.String() != "a\nb\n" {
		t.Errorf("models output: %q", buf.String())
	}

	buf.Reset()
	Models(&buf, nil, false)
	if !strings.Contains(buf.String(), "No models") {
		t.Errorf("models output: %q", buf.String())
	}
}
