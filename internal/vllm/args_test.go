package vllm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yaoyhu/rsstvlm/internal/models"
)

func TestArgs_FullFlagSet(t *testing.T) {
	c := ServeConfig{
		Model:           "Qwen/Qwen3-VL-30B-A3B-Instruct",
		ServedModelName: "qwen3-vl-30b-instruct",
		TensorParallel:  4,
		GPUMemoryUtil:   0.9,
		MaxModelLen:     32768,
		MaxNumSeqs:      16,
		Port:            8000,
		TrustRemoteCode: true,
	}
	want := []string{
		"vllm", "serve", "Qwen/Qwen3-VL-30B-A3B-Instruct",
		"--served-model-name", "qwen3-vl-30b-instruct",
		"--tensor-parallel-size", "4",
		"--gpu-memory-utilization", "0.9",
		"--max-model-len", "32768",
		"--max-num-seqs", "16",
		"--port", "8000",
		"--trust-remote-code",
	}
	if diff := cmp.Diff(want, c.Args()); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}
}

func TestArgs_EmbeddingTask(t *testing.T) {
	c := FromPreset(models.Qwen3Embedding8B)
	line := strings.Join(c.Args(), " ")
	if !strings.Contains(line, "--task embed") {
		t.Errorf("embedding preset args missing --task embed: %s", line)
	}
	if !strings.Contains(line, "--tensor-parallel-size 1") {
		t.Errorf("embedding preset should default to tp=1: %s", line)
	}
}

func TestArgs_OmitsZeroedOptionals(t *testing.T) {
	c := ServeConfig{Model: "m", TensorParallel: 1, GPUMemoryUtil: 0.8}
	line := strings.Join(c.Args(), " ")
	for _, flag := range []string{"--max-model-len", "--max-num-seqs", "--port", "--host", "--dtype", "--api-key"} {
		if strings.Contains(line, flag) {
			t.Errorf("zero-valued %s should be omitted: %s", flag, line)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*ServeConfig)
		wantErr bool
	}{
		{"valid", func(c *ServeConfig) {}, false},
		{"no model", func(c *ServeConfig) { c.Model = "" }, true},
		{"tp zero", func(c *ServeConfig) { c.TensorParallel = 0 }, true},
		{"util too high", func(c *ServeConfig) { c.GPUMemoryUtil = 1.2 }, true},
		{"util zero", func(c *ServeConfig) { c.GPUMemoryUtil = 0 }, true},
		{"bad port", func(c *ServeConfig) { c.Port = 70000 }, true},
		{"negative seqs", func(c *ServeConfig) { c.MaxNumSeqs = -1 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := FromPreset(models.Qwen3VL30BInstruct)
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
