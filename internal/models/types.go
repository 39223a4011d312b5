// Package models holds the registry of served-model presets: the models the
// lab actually runs on the cluster, with the serving parameters each one needs.
package models

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability names a thing a preset can do once served.
type Capability string

const (
	CapabilityChat      Capability = "chat"
	CapabilityVision    Capability = "vision"
	CapabilityReasoning Capability = "reasoning"
	CapabilityEmbedding Capability = "embedding"
)

// ServeDefaults are the vllm serve parameters a preset ships with. Any of
// them can be overridden from the command line at launch time.
type ServeDefaults struct {
	TensorParallel  int     `json:"tensor_parallel"`
	GPUMemoryUtil   float64 `json:"gpu_memory_utilization"`
	MaxModelLen     int     `json:"max_model_len"`
	MaxNumSeqs      int     `json:"max_num_seqs"`
	DType           string  `json:"dtype,omitempty"`
	Task            string  `json:"task,omitempty"` // "" means generate
	TrustRemoteCode bool    `json:"trust_remote_code"`
	EnforceEager    bool    `json:"enforce_eager"`
}

// ModelSpec describes one servable model preset.
type ModelSpec struct {
	ID            string        `json:"id"`      // short name used on the CLI
	RepoID        string        `json:"repo_id"` // HuggingFace repo id passed to vllm serve
	DisplayName   string        `json:"display_name"`
	Family        string        `json:"family"`
	Description   string        `json:"description"`
	ParamsB       float64       `json:"params_b"`
	WeightsGB     float64       `json:"weights_gb"` // bf16 weight footprint
	MinGPUs       int           `json:"min_gpus"`
	ContextLength int           `json:"context_length"`
	Capabilities  []Capability  `json:"capabilities"`
	Defaults      ServeDefaults `json:"defaults"`
}

// IsEmbedding reports whether the preset serves an embedding model rather
// than a generative one.
func (m *ModelSpec) IsEmbedding() bool {
	for _, c := range m.Capabilities {
		if c == CapabilityEmbedding {
			return true
		}
	}
	return false
}

// CapabilityList returns the capabilities as a comma-joined display string.
func (m *ModelSpec) CapabilityList() string {
	parts := make([]string, 0, len(m.Capabilities))
	for _, c := range m.Capabilities {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*ModelSpec{}
)

// Register adds a preset to the registry. It panics on a duplicate or empty
// ID; presets are registered from init funcs so this fails at startup.
func Register(spec *ModelSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if spec.ID == "" {
		panic("models: preset with empty ID")
	}
	if _, dup := registry[spec.ID]; dup {
		panic(fmt.Sprintf("models: duplicate preset %q", spec.ID))
	}
	registry[spec.ID] = spec
}

// Lookup resolves a preset by ID or HuggingFace repo ID (case-insensitive).
func Lookup(name string) (*ModelSpec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if m, ok := registry[name]; ok {
		return m, nil
	}
	lower := strings.ToLower(name)
	for _, m := range registry {
		if strings.ToLower(m.ID) == lower || strings.ToLower(m.RepoID) == lower {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown model preset %q (see `rsstvlm list`)", name)
}

// All returns every registered preset sorted by ID.
func All() []*ModelSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*ModelSpec, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
