// Package plan sizes a served model against a GPU node shape: whether the
// weights fit, which tensor-parallel degree to use, and how much head-room
// is left per GPU at the configured memory utilization.
package plan

import (
	"fmt"

	"github.com/yaoyhu/rsstvlm/internal/models"
)

// FitLevel is how comfortably the model fits the node at the chosen degree.
type FitLevel int

const (
	FitPerfect FitLevel = iota
	FitGood
	FitMarginal
	FitTooTight
)

func (f FitLevel) String() string {
	switch f {
	case FitPerfect:
		return "Perfect"
	case FitGood:
		return "Good"
	case FitMarginal:
		return "Marginal"
	case FitTooTight:
		return "Too Tight"
	default:
		return "Marginal"
	}
}

// NodeShape is the GPU resource of one node of the target partition.
type NodeShape struct {
	GPUs      int     `json:"gpus"`
	VRAMPerGB float64 `json:"vram_per_gpu_gb"`
}

// runtimeOverhead scales weight size to account for activations and the KV
// cache at the default batch settings.
const runtimeOverhead = 1.25

// Plan is the sizing result for one preset on one node shape.
type Plan struct {
	Model             *models.ModelSpec `json:"-"`
	Fit               FitLevel          `json:"-"`
	TensorParallel    int               `json:"tensor_parallel"`
	MemoryRequiredGB  float64           `json:"memory_required_gb"`
	MemoryAvailableGB float64           `json:"memory_available_gb"`
	UtilizationPct    float64           `json:"utilization_pct"`
	HeadroomPerGPUGB  float64           `json:"headroom_per_gpu_gb"`
	Notes             []string          `json:"notes,omitempty"`
}

// FitText returns the fit level as display text.
func (p *Plan) FitText() string { return p.Fit.String() }

// FitMark returns the status marker for tables.
func (p *Plan) FitMark() string {
	switch p.Fit {
	case FitPerfect:
		return "🟢"
	case FitGood:
		return "🟡"
	case FitMarginal:
		return "🟠"
	default:
		return "🔴"
	}
}

// Analyze sizes one preset against a node shape. gpuMemoryUtil is the
// fraction of each GPU the server is allowed to claim; zero uses the
// preset's default.
func Analyze(m *models.ModelSpec, node NodeShape, gpuMemoryUtil float64) *Plan {
	if gpuMemoryUtil <= 0 {
		gpuMemoryUtil = m.Defaults.GPUMemoryUtil
	}
	required := m.WeightsGB * runtimeOverhead
	usablePerGPU := node.VRAMPerGB * gpuMemoryUtil

	p := &Plan{Model: m, MemoryRequiredGB: required}
	if node.GPUs < 1 || usablePerGPU <= 0 {
		p.Fit = FitTooTight
		p.Notes = append(p.Notes, "no usable GPUs on the target partition")
		return p
	}

	tp := chooseTensorParallel(required, usablePerGPU, node.GPUs, m.MinGPUs)
	p.TensorParallel = tp
	p.MemoryAvailableGB = float64(tp) * usablePerGPU
	p.UtilizationPct = required / p.MemoryAvailableGB * 100
	p.HeadroomPerGPUGB = (p.MemoryAvailableGB - required) / float64(tp)

	switch {
	case p.UtilizationPct <= 70:
		p.Fit = FitPerfect
	case p.UtilizationPct <= 85:
		p.Fit = FitGood
	case p.UtilizationPct <= 98:
		p.Fit = FitMarginal
		p.Notes = append(p.Notes, "little KV-cache head-room; consider lowering max-num-seqs")
	default:
		p.Fit = FitTooTight
		p.Notes = append(p.Notes,
			fmt.Sprintf("needs %.0f GB but %d GPUs expose %.0f GB at %.0f%% utilization",
				required, tp, p.MemoryAvailableGB, gpuMemoryUtil*100))
	}
	if tp > 1 {
		p.Notes = append(p.Notes, fmt.Sprintf("weights sharded across %d GPUs", tp))
	}
	return p
}

// AnalyzeAll sizes every registered preset against the node shape.
func AnalyzeAll(presets []*models.ModelSpec, node NodeShape, gpuMemoryUtil float64) []*Plan {
	out := make([]*Plan, 0, len(presets))
	for _, m := range presets {
		out = append(out, Analyze(m, node, gpuMemoryUtil))
	}
	return out
}

// chooseTensorParallel picks the smallest power-of-two degree that fits the
// model, no smaller than the preset's GPU minimum and no larger than the
// node. Power-of-two degrees keep attention heads evenly divisible.
func chooseTensorParallel(requiredGB, usablePerGPU float64, nodeGPUs, minGPUs int) int {
	if minGPUs < 1 {
		minGPUs = 1
	}
	best := 1
	for tp := 1; tp <= nodeGPUs; tp *= 2 {
		best = tp
		if tp >= minGPUs && float64(tp)*usablePerGPU >= requiredGB {
			return tp
		}
	}
	return best
}
