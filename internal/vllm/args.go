// Package vllm assembles the command line for an external `vllm serve`
// process. It builds and validates flags only; the server itself is a
// pre-built tool launched inside a batch job.
package vllm

import (
	"fmt"
	"strconv"

	"github.com/yaoyhu/rsstvlm/internal/models"
)

// DefaultPort is the port the OpenAI-compatible server listens on unless
// overridden (vllm's own default).
const DefaultPort = 8000

// ServeConfig holds every flag we pass to `vllm serve`.
type ServeConfig struct {
	Model           string // HuggingFace repo id or local path
	ServedModelName string
	TensorParallel  int
	GPUMemoryUtil   float64
	MaxModelLen     int
	MaxNumSeqs      int
	Host            string
	Port            int
	DType           string
	Task            string // "embed" for embedding servers, empty for generate
	APIKey          string
	DownloadDir     string
	TrustRemoteCode bool
	EnforceEager    bool
}

// FromPreset seeds a ServeConfig from a registered preset. Flag overrides
// are applied on top by the caller.
func FromPreset(m *models.ModelSpec) ServeConfig {
	d := m.Defaults
	return ServeConfig{
		Model:           m.RepoID,
		ServedModelName: m.ID,
		TensorParallel:  d.TensorParallel,
		GPUMemoryUtil:   d.GPUMemoryUtil,
		MaxModelLen:     d.MaxModelLen,
		MaxNumSeqs:      d.MaxNumSeqs,
		DType:           d.DType,
		Task:            d.Task,
		Port:            DefaultPort,
		TrustRemoteCode: d.TrustRemoteCode,
		EnforceEager:    d.EnforceEager,
	}
}

// Validate checks the config before a script is generated, so a bad flag set
// fails at submit time instead of minutes later inside the job.
func (c *ServeConfig) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("vllm: model is required")
	}
	if c.TensorParallel < 1 {
		return fmt.Errorf("vllm: tensor-parallel-size %d, must be >= 1", c.TensorParallel)
	}
	if c.GPUMemoryUtil <= 0 || c.GPUMemoryUtil > 1 {
		return fmt.Errorf("vllm: gpu-memory-utilization %v, must be in (0, 1]", c.GPUMemoryUtil)
	}
	if c.MaxModelLen < 0 {
		return fmt.Errorf("vllm: max-model-len %d, must be >= 0", c.MaxModelLen)
	}
	if c.MaxNumSeqs < 0 {
		return fmt.Errorf("vllm: max-num-seqs %d, must be >= 0", c.MaxNumSeqs)
	}
	if c.Port != 0 && (c.Port < 1 || c.Port > 65535) {
		return fmt.Errorf("vllm: port %d out of range", c.Port)
	}
	return nil
}

// Args returns the full argv, starting with "vllm serve". Zero-valued
// optional fields are omitted so the server's own defaults apply.
func (c *ServeConfig) Args() []string {
	args := []string{"vllm", "serve", c.Model}
	if c.ServedModelName != "" {
		args = append(args, "--served-model-name", c.ServedModelName)
	}
	if c.Task != "" {
		args = append(args, "--task", c.Task)
	}
	args = append(args,
		"--tensor-parallel-size", strconv.Itoa(c.TensorParallel),
		"--gpu-memory-utilization", strconv.FormatFloat(c.GPUMemoryUtil, 'g', -1, 64),
	)
	if c.MaxModelLen > 0 {
		args = append(args, "--max-model-len", strconv.Itoa(c.MaxModelLen))
	}
	if c.MaxNumSeqs > 0 {
		args = append(args, "--max-num-seqs", strconv.Itoa(c.MaxNumSeqs))
	}
	if c.DType != "" {
		args = append(args, "--dtype", c.DType)
	}
	if c.Host != "" {
		args = append(args, "--host", c.Host)
	}
	if c.Port != 0 {
		args = append(args, "--port", strconv.Itoa(c.Port))
	}
	if c.APIKey != "" {
		args = append(args, "--api-key", c.APIKey)
	}
	if c.DownloadDir != "" {
		args = append(args, "--download-dir", c.DownloadDir)
	}
	if c.TrustRemoteCode {
		args = append(args, "--trust-remote-code")
	}
	if c.EnforceEager {
		args = append(args, "--enforce-eager")
	}
	return args
}
