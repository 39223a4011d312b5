package models

// Qwen3Embedding8B backs the graph retriever (4096-dim vectors in the Neo4j
// vector store). Served with task=embed on a single GPU.
var Qwen3Embedding8B = &ModelSpec{
	ID:            "qwen3-embedding-8b",
	RepoID:        "Qwen/Qwen3-Embedding-8B",
	DisplayName:   "Qwen3 Embedding 8B",
	Family:        "qwen3",
	Description:   "Embedding model for the knowledge-graph vector store",
	ParamsB:       7.6,
	WeightsGB:     15.2,
	MinGPUs:       1,
	ContextLength: 32768,
	Capabilities:  []Capability{CapabilityEmbedding},
	Defaults: ServeDefaults{
		TensorParallel:  1,
		GPUMemoryUtil:   0.85,
		MaxModelLen:     8192,
		MaxNumSeqs:      64,
		Task:            "embed",
		TrustRemoteCode: true,
	},
}

func init() {
	Register(Qwen3Embedding8B)
}
