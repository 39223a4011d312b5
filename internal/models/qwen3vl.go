package models

// Qwen3VL30BInstruct is the instruct variant of Qwen3-VL-30B-A3B, the main
// vision-language model served for the retrieval pipeline. MoE: roughly 3B
// parameters active per token, but the full expert set must fit in VRAM.
var Qwen3VL30BInstruct = &ModelSpec{
	ID:            "qwen3-vl-30b-instruct",
	RepoID:        "Qwen/Qwen3-VL-30B-A3B-Instruct",
	DisplayName:   "Qwen3-VL 30B A3B Instruct",
	Family:        "qwen3-vl",
	Description:   "Vision-language MoE model for hyperspectral imagery and figure understanding",
	ParamsB:       30.5,
	WeightsGB:     61.0,
	MinGPUs:       2,
	ContextLength: 262144,
	Capabilities:  []Capability{CapabilityChat, CapabilityVision},
	Defaults: ServeDefaults{
		TensorParallel:  4,
		GPUMemoryUtil:   0.90,
		MaxModelLen:     32768,
		MaxNumSeqs:      16,
		TrustRemoteCode: true,
	},
}

// Qwen3VL30BThinking is the thinking variant of the same checkpoint. Longer
// generations, so it runs with a smaller batch.
var Qwen3VL30BThinking = &ModelSpec{
	ID:            "qwen3-vl-30b-thinking",
	RepoID:        "Qwen/Qwen3-VL-30B-A3B-Thinking",
	DisplayName:   "Qwen3-VL 30B A3B Thinking",
	Family:        "qwen3-vl",
	Description:   "Thinking variant of Qwen3-VL 30B for multi-step reasoning over retrieved papers",
	ParamsB:       30.5,
	WeightsGB:     61.0,
	MinGPUs:       2,
	ContextLength: 262144,
	Capabilities:  []Capability{CapabilityChat, CapabilityVision, CapabilityReasoning},
	Defaults: ServeDefaults{
		TensorParallel:  4,
		GPUMemoryUtil:   0.90,
		MaxModelLen:     65536,
		MaxNumSeqs:      8,
		TrustRemoteCode: true,
	},
}

func init() {
	Register(Qwen3VL30BInstruct)
	Register(Qwen3VL30BThinking)
}
