// Package display handles CLI table and JSON output for the queue, presets,
// node specs, and sizing plans.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/olekukonko/tablewriter"

	"github.com/yaoyhu/rsstvlm/internal/hardware"
	"github.com/yaoyhu/rsstvlm/internal/plan"
	"github.com/yaoyhu/rsstvlm/internal/slurm"
)

var (
	nodeTpl   *template.Template
	presetTpl *template.Template
)

func init() {
	nodeTpl = template.Must(template.New("node").Parse(
		`
=== Node: {{.Hostname}} ===
CPU: {{.CPUName}} ({{.TotalCPUCores}} cores)
Total RAM: {{.TotalRAMGB}}
Available RAM: {{.AvailableRAMGB}}
{{.GpuBlock}}
{{- if .SlurmBlock}}

SLURM allocation:
{{.SlurmBlock}}
{{- end}}

`))
	presetTpl = template.Must(template.New("preset").Parse(
		`
=== {{.DisplayName}} ===

Preset: {{.ID}}
Model: {{.RepoID}}
Family: {{.Family}}
Parameters: {{.ParamsB}}B ({{.WeightsGB}} GB bf16)
Context Length: {{.ContextLength}} tokens
Capabilities: {{.Capabilities}}
{{.Description}}

Serve defaults:
  tensor-parallel-size: {{.TensorParallel}}
  gpu-memory-utilization: {{.GPUMemoryUtil}}
  max-model-len: {{.MaxModelLen}}
  max-num-seqs: {{.MaxNumSeqs}}

Plan for {{.NodeGPUs}}x {{.NodeVRAM}} GB GPUs:
  Fit: {{.FitStatus}}
  Tensor parallel: {{.PlanTP}}
  Memory: {{.MemoryRequired}} / {{.MemoryAvailable}} GB ({{.UtilizationPct}})
{{- if .NotesBlock}}

Notes:
{{.NotesBlock}}
{{- end}}

`))
}

// Queue prints the job table (or JSON).
func Queue(out io.Writer, jobs []slurm.JobInfo, useJSON bool) {
	if useJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"jobs": jobs})
		return
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "\nNo jobs in the queue.")
		return
	}
	fmt.Fprintf(out, "\n%d job(s)\n\n", len(jobs))
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Job ID", "Name", "Partition", "State", "Elapsed", "Nodes", "Node/Reason")
	for _, j := range jobs {
		elapsed := j.Elapsed
		if elapsed == "" && j.ElapsedSec > 0 {
			elapsed = fmt.Sprintf("%ds", j.ElapsedSec)
		}
		where := j.NodeList
		if where == "" {
			where = j.Reason
		}
		tbl.Append([]string{
			fmt.Sprintf("%d", j.ID), j.Name, j.Partition, j.State,
			elapsed, fmt.Sprintf("%d", j.Nodes), where,
		})
	}
	_ = tbl.Render()
}

// Presets prints the preset table with plan columns for the node shape.
func Presets(out io.Writer, plans []*plan.Plan, node plan.NodeShape, useJSON bool) {
	if useJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"node": node, "presets": plansJSON(plans)})
		return
	}
	fmt.Fprintf(out, "\n=== Model Presets (%dx %.0f GB GPUs) ===\n\n", node.GPUs, node.VRAMPerGB)
	tbl := tablewriter.NewWriter(out)
	tbl.Header("Fit", "Preset", "Model", "Params", "TP", "Mem %", "Context", "Capabilities")
	for _, p := range plans {
		m := p.Model
		tbl.Append([]string{
			p.FitMark() + " " + p.FitText(),
			m.ID,
			m.RepoID,
			fmt.Sprintf("%.1fB", m.ParamsB),
			fmt.Sprintf("%d", p.TensorParallel),
			fmt.Sprintf("%.0f%%", p.UtilizationPct),
			fmt.Sprintf("%dk", m.ContextLength/1000),
			m.CapabilityList(),
		})
	}
	_ = tbl.Render()
}

// presetData holds template data for the Preset detail view.
type presetData struct {
	ID, RepoID, DisplayName, Family, Description, Capabilities string
	ParamsB, WeightsGB                                         string
	ContextLength, TensorParallel, MaxModelLen, MaxNumSeqs     int
	GPUMemoryUtil                                              string
	NodeGPUs                                                   int
	NodeVRAM                                                   string
	FitStatus, PlanTP, UtilizationPct                          string
	MemoryRequired, MemoryAvailable, NotesBlock                string
}

// Preset prints a single preset with its sizing plan.
func Preset(out io.Writer, p *plan.Plan, node plan.NodeShape, useJSON bool) {
	m := p.Model
	if useJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"node": node, "preset": planJSON(p)})
		return
	}
	data := presetData{
		ID:             m.ID,
		RepoID:         m.RepoID,
		DisplayName:    m.DisplayName,
		Family:         m.Family,
		Description:    m.Description,
		Capabilities:   m.CapabilityList(),
		ParamsB:        fmt.Sprintf("%.1f", m.ParamsB),
		WeightsGB:      fmt.Sprintf("%.1f", m.WeightsGB),
		ContextLength:  m.ContextLength,
		TensorParallel: m.Defaults.TensorParallel,
		MaxModelLen:    m.Defaults.MaxModelLen,
		MaxNumSeqs:     m.Defaults.MaxNumSeqs,
		GPUMemoryUtil:  fmt.Sprintf("%.2f", m.Defaults.GPUMemoryUtil),
		NodeGPUs:       node.GPUs,
		NodeVRAM:       fmt.Sprintf("%.0f", node.VRAMPerGB),
		FitStatus:      p.FitMark() + " " + p.FitText(),
		PlanTP:         fmt.Sprintf("%d", p.TensorParallel),
		UtilizationPct: fmt.Sprintf("%.1f%%", p.UtilizationPct),
		MemoryRequired: fmt.Sprintf("%.1f", p.MemoryRequiredGB),
		MemoryAvailable: fmt.Sprintf("%.1f", p.MemoryAvailableGB),
	}
	if len(p.Notes) > 0 {
		data.NotesBlock = "  " + strings.Join(p.Notes, "\n  ")
	}
	_ = presetTpl.Execute(out, data)
}

// Node prints local node specs (template or JSON).
func Node(out io.Writer, specs *hardware.NodeSpecs, useJSON bool) {
	if useJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"node": specs})
		return
	}
	data := struct {
		Hostname, CPUName, GpuBlock, SlurmBlock string
		TotalCPUCores                           int
		TotalRAMGB, AvailableRAMGB              string
	}{
		Hostname:       specs.Hostname,
		CPUName:        specs.CPUName,
		TotalCPUCores:  specs.TotalCPUCores,
		TotalRAMGB:     fmt.Sprintf("%.2f GB", specs.TotalRAMGB),
		AvailableRAMGB: fmt.Sprintf("%.2f GB", specs.AvailableRAMGB),
		GpuBlock:       buildGpuBlock(specs),
		SlurmBlock:     buildSlurmBlock(&specs.Slurm),
	}
	_ = nodeTpl.Execute(out, data)
}

func buildGpuBlock(specs *hardware.NodeSpecs) string {
	if !specs.HasGPU() {
		return "GPU: Not detected"
	}
	var lines []string
	for _, g := range specs.Gpus {
		lines = append(lines, fmt.Sprintf("GPU %d: %s (%.1f GB, %.1f GB used)",
			g.Index, g.Name, g.VRAMGB, g.UsedGB))
	}
	return strings.Join(lines, "\n")
}

func buildSlurmBlock(env *hardware.SlurmEnv) string {
	if !env.InJob() {
		return ""
	}
	lines := []string{
		fmt.Sprintf("  Job: %s (%s)", env.JobName, env.JobID),
		fmt.Sprintf("  Nodes: %s", env.NodeList),
	}
	if env.VisibleGPUs != "" {
		lines = append(lines, fmt.Sprintf("  CUDA_VISIBLE_DEVICES: %s", env.VisibleGPUs))
	}
	return strings.Join(lines, "\n")
}

func plansJSON(plans []*plan.Plan) []map[string]any {
	out := make([]map[string]any, 0, len(plans))
	for _, p := range plans {
		out = append(out, planJSON(p))
	}
	return out
}

func planJSON(p *plan.Plan) map[string]any {
	m := p.Model
	return map[string]any{
		"id":                  m.ID,
		"repo_id":             m.RepoID,
		"params_b":            m.ParamsB,
		"weights_gb":          m.WeightsGB,
		"context_length":      m.ContextLength,
		"capabilities":        m.Capabilities,
		"fit":                 p.FitText(),
		"tensor_parallel":     p.TensorParallel,
		"memory_required_gb":  p.MemoryRequiredGB,
		"memory_available_gb": p.MemoryAvailableGB,
		"utilization_pct":     p.UtilizationPct,
		"notes":               p.Notes,
	}
}

// Models prints model IDs reported by a live endpoint.
func Models(out io.Writer, ids []string, useJSON bool) {
	if useJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"models": ids})
		return
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No models served.")
		return
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
}
